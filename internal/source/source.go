// Package source loads sales records from the sales API or from a local
// export of it.
package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"sales-dashboard/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fetcher returns the records matching a query. Returned slices are shared
// and must not be modified.
type Fetcher interface {
	Fetch(ctx context.Context, q models.Query) ([]models.SalesRecord, error)
}

// wireRecord mirrors one element of the API response.
type wireRecord struct {
	Product      string  `json:"Produto"`
	Category     string  `json:"Categoria do Produto"`
	Price        float64 `json:"Preço"`
	Freight      float64 `json:"Frete"`
	PurchaseDate string  `json:"Data da Compra"`
	Seller       string  `json:"Vendedor"`
	State        string  `json:"Local da compra"`
	Rating       int     `json:"Avaliação da compra"`
	PaymentType  string  `json:"Tipo de pagamento"`
	Installments int     `json:"Quantidade de parcelas"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

func (w wireRecord) toModel() (models.SalesRecord, error) {
	date, err := parseDate(w.PurchaseDate)
	if err != nil {
		return models.SalesRecord{}, err
	}
	return models.SalesRecord{
		Product:      w.Product,
		Category:     w.Category,
		Price:        w.Price,
		Freight:      w.Freight,
		PurchaseDate: date,
		Seller:       w.Seller,
		State:        w.State,
		Rating:       w.Rating,
		PaymentType:  w.PaymentType,
		Installments: w.Installments,
		Lat:          w.Lat,
		Lon:          w.Lon,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid purchase date %q: %w", s, err)
	}
	return date, nil
}

// DecodeRecords reads a JSON array of API records. Any record with an
// unparseable purchase date fails the whole decode.
func DecodeRecords(r io.Reader) ([]models.SalesRecord, error) {
	var wire []wireRecord
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	records := make([]models.SalesRecord, 0, len(wire))
	for i, w := range wire {
		rec, err := w.toModel()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
