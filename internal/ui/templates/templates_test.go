package templates

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestSignals(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(Signals(models.DefaultFilter())), &got))

	assert.Equal(t, "Brasil", got["regiao"])
	assert.Equal(t, true, got["todosAnos"])
	assert.Equal(t, float64(5), got["topVendedores"])
	assert.Equal(t, []any{}, got["vendedores"])
	assert.Equal(t, "receita", got["aba"])
}

func TestSellerOptions(t *testing.T) {
	html := render(t, SellerOptions([]string{"Ana", "<Bruno>"}, []string{"Ana"}))

	assert.Contains(t, html, `<option value="Ana" selected>Ana</option>`)
	assert.Contains(t, html, "&lt;Bruno&gt;")
	assert.NotContains(t, html, "<Bruno>")
}

func TestDashboard_Error(t *testing.T) {
	html := render(t, Dashboard(View{Filter: models.DefaultFilter(), Error: "fora do ar"}))

	assert.True(t, strings.HasPrefix(html, `<section id="dashboard">`))
	assert.Contains(t, html, `<div class="alert" role="alert">fora do ar</div>`)
	assert.NotContains(t, html, "tabpanel")
}

func TestDashboard_Tabs(t *testing.T) {
	report := &models.Report{
		Filter:  models.DefaultFilter(),
		Summary: models.Summary{RevenueLabel: "R$ 1.50 mil", SalesLabel: "3.00"},
	}
	set := &charts.Set{Charts: []charts.Chart{
		{ID: charts.RevenueMap, Title: "Receita por estado", SVG: "<svg id=\"m\"></svg>"},
		{ID: charts.MonthlyRevenue, Title: "Receita mensal", Empty: true},
	}}

	html := render(t, Dashboard(View{Filter: report.Filter, Report: report, Charts: set}))

	for _, want := range []string{
		`id="aba-receita"`, `id="aba-quantidade"`, `id="aba-vendedores"`,
		"R$ 1.50 mil", "Quantidade de vendas", "Quantidade de vendedores",
		`<svg id="m"></svg>`, "Sem dados para os filtros selecionados",
	} {
		assert.Contains(t, html, want)
	}
}

func TestPage(t *testing.T) {
	f := models.Filter{Region: "Sul", Year: 2021, Sellers: []string{"Ana"}, TopSellers: 3}
	html := render(t, Page(View{Filter: f, Sellers: []string{"Ana"}, Error: "x"}))

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<h1>DASHBOARD</h1>")
	assert.Contains(t, html, `<option value="Sul" selected>Sul</option>`)
	assert.Contains(t, html, `href="/export/vendas.xlsx?ano=2021&amp;regiao=Sul&amp;top=3&amp;vendedor=Ana"`)
	assert.Contains(t, html, "data-signals=")
}

func TestExportLink(t *testing.T) {
	f := models.Filter{Region: "Norte", AllYears: true, Sellers: []string{"Ana", "Bruno"}, TopSellers: 5}
	html := render(t, ExportLink(f))

	assert.Equal(t, `<a id="exportar" href="/export/vendas.xlsx?regiao=Norte&amp;top=5&amp;vendedor=Ana&amp;vendedor=Bruno">Exportar planilha</a>`, html)
}

func TestPage_EscapesUpstreamText(t *testing.T) {
	seller := "<img/src=x/onerror=alert(1)>"
	f := models.Filter{Region: "Brasil", AllYears: true, Sellers: []string{seller}, TopSellers: 5}
	html := render(t, Page(View{Filter: f, Sellers: []string{seller}, Error: `<script>alert(3)</script>`}))

	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;img/src=x/onerror=alert(1)&gt;")
}
