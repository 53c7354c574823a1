// Package charts turns a dashboard report into server-rendered SVG charts.
package charts

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
)

const (
	RevenueMap        = "mapa-receita"
	MonthlyRevenue    = "receita-mensal"
	TopStatesRevenue  = "top-estados-receita"
	CategoryRevenue   = "receita-categorias"
	SalesMap          = "mapa-quantidade"
	MonthlySales      = "quantidade-mensal"
	TopStatesSales    = "top-estados-quantidade"
	CategorySales     = "quantidade-categorias"
	TopSellersRevenue = "top-vendedores-receita"
	TopSellersSales   = "top-vendedores-quantidade"
	topStates         = 5
	maxRenderWorkers  = 4
)

type Chart struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	SVG   string `json:"-"`
	Empty bool   `json:"empty"`
}

// Set holds rendered charts in dashboard order.
type Set struct {
	Charts []Chart
}

func (s *Set) Get(id string) (Chart, bool) {
	for _, c := range s.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// definition describes one chart; build returns nil when the view has no data.
type definition struct {
	id    string
	title func(r *models.Report) string
	build func(rd *Renderer, r *models.Report, title string) renderable
}

func fixedTitle(t string) func(*models.Report) string {
	return func(*models.Report) string { return t }
}

var definitions = []definition{
	{RevenueMap, fixedTitle("Receita por Estado"), func(rd *Renderer, r *models.Report, title string) renderable {
		points := make([]geoPoint, 0, len(r.StateRevenue))
		for _, s := range r.StateRevenue {
			points = append(points, geoPoint{Label: s.State, Lat: s.Lat, Lon: s.Lon, Value: s.Revenue})
		}
		return rd.geo(title, points)
	}},
	{MonthlyRevenue, fixedTitle("Receita mensal"), func(rd *Renderer, r *models.Report, title string) renderable {
		return rd.line(title, "Receita", r.MonthlyRevenue)
	}},
	{TopStatesRevenue, fixedTitle("Top estados (receita)"), func(rd *Renderer, r *models.Report, title string) renderable {
		bars := make([]chart.Value, 0, topStates)
		for _, s := range head(r.StateRevenue, topStates) {
			bars = append(bars, chart.Value{Label: s.State, Value: s.Revenue})
		}
		return rd.bar(title, "Receita", bars)
	}},
	{CategoryRevenue, fixedTitle("Receita por categoria"), func(rd *Renderer, r *models.Report, title string) renderable {
		return rd.bar(title, "Receita", categoryBars(r.CategoryRevenue))
	}},
	{SalesMap, fixedTitle("Qty de Vendas por Estado"), func(rd *Renderer, r *models.Report, title string) renderable {
		points := make([]geoPoint, 0, len(r.StateSales))
		for _, s := range r.StateSales {
			points = append(points, geoPoint{Label: s.State, Lat: s.Lat, Lon: s.Lon, Value: float64(s.Sales)})
		}
		return rd.geo(title, points)
	}},
	{MonthlySales, fixedTitle("Quantidade Mensal"), func(rd *Renderer, r *models.Report, title string) renderable {
		return rd.line(title, "Quantidade", r.MonthlySales)
	}},
	{TopStatesSales, fixedTitle("Top estados (Qty vendida)"), func(rd *Renderer, r *models.Report, title string) renderable {
		bars := make([]chart.Value, 0, topStates)
		for _, s := range head(r.StateSales, topStates) {
			bars = append(bars, chart.Value{Label: s.State, Value: float64(s.Sales)})
		}
		return rd.bar(title, "Quantidade Vendas", bars)
	}},
	{CategorySales, fixedTitle("Quantidade de Vendas por Categoria"), func(rd *Renderer, r *models.Report, title string) renderable {
		return rd.bar(title, "Quantidade Vendas", categoryBars(r.CategorySales))
	}},
	{TopSellersRevenue, func(r *models.Report) string {
		return fmt.Sprintf("Top %d vendedores (receita)", r.Filter.TopSellers)
	}, func(rd *Renderer, r *models.Report, title string) renderable {
		return rd.bar(title, "Receita", sellerBars(topByRevenue(r), func(s models.SellerStats) float64 { return s.Revenue }))
	}},
	{TopSellersSales, func(r *models.Report) string {
		return fmt.Sprintf("Top %d vendedores (Qty)", r.Filter.TopSellers)
	}, func(rd *Renderer, r *models.Report, title string) renderable {
		return rd.bar(title, "Quantidade de vendas", sellerBars(topBySales(r), func(s models.SellerStats) float64 { return float64(s.Sales) }))
	}},
}

// IDs lists every chart id in dashboard order.
func IDs() []string {
	ids := make([]string, len(definitions))
	for i, s := range definitions {
		ids[i] = s.id
	}
	return ids
}

// Renderer draws every chart with the font loaded by NewRenderer. Charts
// must never fall back to go-chart's lazily loaded default font.
type Renderer struct {
	width  int
	height int
	font   *truetype.Font
}

func NewRenderer(cfg config.ChartsConfig) (*Renderer, error) {
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load chart font: %w", err)
	}
	return &Renderer{width: cfg.Width, height: cfg.Height, font: font}, nil
}

// RenderAll renders every chart of the report concurrently.
func (rd *Renderer) RenderAll(ctx context.Context, report *models.Report) (*Set, error) {
	set := &Set{Charts: make([]Chart, len(definitions))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRenderWorkers)
	for i, s := range definitions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := rd.render(s, report)
			if err != nil {
				return err
			}
			set.Charts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// Render renders a single chart by id. The boolean is false for unknown ids.
func (rd *Renderer) Render(report *models.Report, id string) (Chart, bool, error) {
	for _, s := range definitions {
		if s.id == id {
			c, err := rd.render(s, report)
			return c, true, err
		}
	}
	return Chart{}, false, nil
}

func (rd *Renderer) render(s definition, report *models.Report) (Chart, error) {
	c := Chart{ID: s.id, Title: s.title(report)}

	r := s.build(rd, report, html.EscapeString(c.Title))
	if r == nil {
		c.Empty = true
		return c, nil
	}

	var buf bytes.Buffer
	if err := r.Render(chart.SVG, &buf); err != nil {
		return Chart{}, fmt.Errorf("render chart %s: %w", s.id, err)
	}
	c.SVG = buf.String()
	return c, nil
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
