package models

import "time"

// DateLayout is the purchase date format used by the sales API.
const DateLayout = "02/01/2006"

type SalesRecord struct {
	Product      string    `json:"Produto"`
	Category     string    `json:"Categoria do Produto"`
	Price        float64   `json:"Preço"`
	Freight      float64   `json:"Frete"`
	PurchaseDate time.Time `json:"-"`
	Seller       string    `json:"Vendedor"`
	State        string    `json:"Local da compra"`
	Rating       int       `json:"Avaliação da compra"`
	PaymentType  string    `json:"Tipo de pagamento"`
	Installments int       `json:"Quantidade de parcelas"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
}

type StateRevenue struct {
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Revenue float64 `json:"revenue"`
}

type StateSales struct {
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Sales int     `json:"sales"`
}

// MonthlyValue is one calendar month bucket. Value holds either revenue or
// a sales count depending on the view it belongs to.
type MonthlyValue struct {
	Month     time.Time `json:"month"`
	Year      int       `json:"year"`
	MonthName string    `json:"month_name"`
	Value     float64   `json:"value"`
}

type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

type SellerStats struct {
	Seller  string  `json:"seller"`
	Revenue float64 `json:"revenue"`
	Sales   int     `json:"sales"`
}

type Summary struct {
	Revenue      float64 `json:"revenue"`
	Sales        int     `json:"sales"`
	RevenueLabel string  `json:"revenue_label"`
	SalesLabel   string  `json:"sales_label"`
}

// Report is everything the dashboard shows for one filter.
type Report struct {
	Filter          Filter          `json:"filter"`
	Sellers         []string        `json:"sellers"`
	Summary         Summary         `json:"summary"`
	StateRevenue    []StateRevenue  `json:"state_revenue"`
	MonthlyRevenue  []MonthlyValue  `json:"monthly_revenue"`
	CategoryRevenue []CategoryValue `json:"category_revenue"`
	SellerStats     []SellerStats   `json:"seller_stats"`
	StateSales      []StateSales    `json:"state_sales"`
	MonthlySales    []MonthlyValue  `json:"monthly_sales"`
	CategorySales   []CategoryValue `json:"category_sales"`
	FetchedAt       time.Time       `json:"fetched_at"`
	Records         []SalesRecord   `json:"-"`
}
