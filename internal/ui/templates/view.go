package templates

import (
	jsoniter "github.com/json-iterator/go"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
)

// View is what the dashboard components render. Report and Charts are nil
// when Error is set.
type View struct {
	Filter  models.Filter
	Sellers []string
	Report  *models.Report
	Charts  *charts.Set
	Error   string
}

type tab struct {
	id    string
	label string
	left  []string
	right []string
}

var tabs = []tab{
	{"receita", "Receita",
		[]string{charts.RevenueMap, charts.TopStatesRevenue},
		[]string{charts.MonthlyRevenue, charts.CategoryRevenue}},
	{"quantidade", "Quantidade de vendas",
		[]string{charts.SalesMap, charts.TopStatesSales},
		[]string{charts.MonthlySales, charts.CategorySales}},
	{"vendedores", "Vendedores",
		[]string{charts.TopSellersRevenue},
		[]string{charts.TopSellersSales}},
}

// Signals returns the initial datastar signals for a filter.
func Signals(f models.Filter) string {
	sellers := f.Sellers
	if sellers == nil {
		sellers = []string{}
	}
	b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(map[string]any{
		"regiao":        f.Region,
		"todosAnos":     f.AllYears,
		"ano":           f.Year,
		"vendedores":    sellers,
		"topVendedores": f.TopSellers,
		"aba":           tabs[0].id,
	})
	return string(b)
}

func exportURL(f models.Filter) string {
	return "/export/vendas.xlsx?" + f.Values().Encode()
}
