package charts

import (
	"html"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sales-dashboard/internal/format"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

// South America bounds used for the bubble maps.
const (
	minLon = -82.0
	maxLon = -34.0
	minLat = -56.0
	maxLat = 13.0

	minBubble = 4.0
	maxBubble = 28.0
)

// seaborn "deep" palette
var palette = []drawing.Color{
	drawing.ColorFromHex("4c72b0"),
	drawing.ColorFromHex("dd8452"),
	drawing.ColorFromHex("55a868"),
	drawing.ColorFromHex("c44e52"),
	drawing.ColorFromHex("8172b3"),
	drawing.ColorFromHex("937860"),
}

// One dash pattern per year, cycled.
var dashes = [][]float64{nil, {6, 3}, {2, 2}, {8, 3, 2, 3}}

type geoPoint struct {
	Label string
	Lat   float64
	Lon   float64
	Value float64
}

func (rd *Renderer) background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

func compactFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return format.Number(f, "")
	}
	return ""
}

// geo draws one bubble per point on longitude/latitude axes, sized by
// value. go-chart writes text verbatim into the SVG, so every label taken
// from the data is escaped here and in bar.
func (rd *Renderer) geo(title string, points []geoPoint) renderable {
	if len(points) == 0 {
		return nil
	}

	maxValue := 0.0
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	labels := make([]chart.Value2, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.Lon, p.Lat
		maxValue = math.Max(maxValue, p.Value)
		labels[i] = chart.Value2{XValue: p.Lon, YValue: p.Lat, Label: html.EscapeString(p.Label)}
	}

	sizes := make([]float64, len(points))
	for i, p := range points {
		sizes[i] = minBubble
		if maxValue > 0 && p.Value > 0 {
			sizes[i] += (maxBubble - minBubble) * math.Sqrt(p.Value/maxValue)
		}
	}

	bubbleColor := palette[0].WithAlpha(160)
	return &chart.Chart{
		Title:      title,
		Font:       rd.font,
		Width:      rd.width,
		Height:     rd.height,
		Background: rd.background(),
		XAxis: chart.XAxis{
			Name:  "lon",
			Range: &chart.ContinuousRange{Min: minLon, Max: maxLon},
		},
		YAxis: chart.YAxis{
			Name:  "lat",
			Range: &chart.ContinuousRange{Min: minLat, Max: maxLat},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotColor:    bubbleColor,
					DotWidth:    minBubble,
					DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
						return sizes[index]
					},
				},
			},
			chart.AnnotationSeries{
				Annotations: labels,
				Style:       chart.Style{FontSize: 7, StrokeColor: drawing.ColorTransparent, FillColor: drawing.ColorTransparent},
			},
		},
	}
}

// line draws one series per year with months on the x axis. The y axis
// spans from zero to the largest value.
func (rd *Renderer) line(title, yName string, months []models.MonthlyValue) renderable {
	if len(months) == 0 {
		return nil
	}

	byYear := make(map[int]*chart.ContinuousSeries)
	years := make([]int, 0)
	maxValue := 0.0
	for _, m := range months {
		s, ok := byYear[m.Year]
		if !ok {
			s = &chart.ContinuousSeries{Name: strconv.Itoa(m.Year)}
			byYear[m.Year] = s
			years = append(years, m.Year)
		}
		s.XValues = append(s.XValues, float64(m.Month.Month()))
		s.YValues = append(s.YValues, m.Value)
		maxValue = math.Max(maxValue, m.Value)
	}
	slices.Sort(years)
	if maxValue == 0 {
		maxValue = 1
	}

	series := make([]chart.Series, 0, len(years))
	for i, y := range years {
		s := byYear[y]
		color := palette[i%len(palette)]
		s.Style = chart.Style{
			StrokeColor:     color,
			StrokeWidth:     2,
			StrokeDashArray: dashes[i%len(dashes)],
			DotColor:        color,
			DotWidth:        3,
		}
		series = append(series, *s)
	}

	ticks := make([]chart.Tick, 0, 12)
	for m := time.January; m <= time.December; m++ {
		ticks = append(ticks, chart.Tick{Value: float64(m), Label: m.String()[:3]})
	}

	c := &chart.Chart{
		Title:      title,
		Font:       rd.font,
		Width:      rd.width,
		Height:     rd.height,
		Background: rd.background(),
		XAxis: chart.XAxis{
			Name:  "Mes",
			Range: &chart.ContinuousRange{Min: 1, Max: 12},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           yName,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxValue},
			ValueFormatter: compactFormatter,
		},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.Legend(c)}
	return c
}

func (rd *Renderer) bar(title, yName string, bars []chart.Value) renderable {
	if len(bars) == 0 {
		return nil
	}

	maxValue := 0.0
	for i := range bars {
		maxValue = math.Max(maxValue, bars[i].Value)
		bars[i].Label = html.EscapeString(bars[i].Label)
		bars[i].Style = chart.Style{
			FillColor:   palette[0],
			StrokeColor: palette[0],
		}
	}
	if maxValue == 0 {
		maxValue = 1
	}

	barWidth := max(8, (rd.width-120)/(len(bars)*2))
	return &chart.BarChart{
		Title:      title,
		Font:       rd.font,
		Width:      rd.width,
		Height:     rd.height,
		Background: rd.background(),
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		YAxis: chart.YAxis{
			Name:           yName,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: compactFormatter,
		},
		Bars: bars,
	}
}

func categoryBars(values []models.CategoryValue) []chart.Value {
	bars := make([]chart.Value, 0, len(values))
	for _, v := range values {
		bars = append(bars, chart.Value{Label: v.Category, Value: v.Value})
	}
	return bars
}

func sellerBars(stats []models.SellerStats, value func(models.SellerStats) float64) []chart.Value {
	bars := make([]chart.Value, 0, len(stats))
	for _, s := range stats {
		bars = append(bars, chart.Value{Label: s.Seller, Value: value(s)})
	}
	return bars
}

func topByRevenue(r *models.Report) []models.SellerStats {
	return services.TopSellersByRevenue(r.SellerStats, r.Filter.TopSellers)
}

func topBySales(r *models.Report) []models.SellerStats {
	return services.TopSellersBySales(r.SellerStats, r.Filter.TopSellers)
}
