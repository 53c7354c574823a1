// Package export writes the filtered sales records as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const SheetName = "Vendas"

var header = []any{
	"Produto", "Categoria do Produto", "Preço", "Frete", "Data da Compra", "Vendedor",
	"Local da compra", "Avaliação da compra", "Tipo de pagamento", "Quantidade de parcelas",
	"lat", "lon",
}

// WriteXLSX writes records to w as a single-sheet workbook with the API's
// column names as header.
func WriteXLSX(w io.Writer, records []models.SalesRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []any{
			r.Product, r.Category, r.Price, r.Freight, r.PurchaseDate, r.Seller,
			r.State, r.Rating, r.PaymentType, r.Installments, r.Lat, r.Lon,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if len(records) > 0 {
		last, err := excelize.CoordinatesToCellName(5, len(records)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "E2", last, dateStyle); err != nil {
			return fmt.Errorf("style date column: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
