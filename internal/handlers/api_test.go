package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

type stubSource struct {
	records []models.SalesRecord
	err     error
}

func (s stubSource) Fetch(ctx context.Context, q models.Query) ([]models.SalesRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.SalesRecord
	for _, r := range s.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRecords() []models.SalesRecord {
	return []models.SalesRecord{
		{Product: "Livro A", Category: "livros", Price: 100, PurchaseDate: day(2020, 1, 5), Seller: "Ana", State: "SP", Lat: -22.19, Lon: -48.79},
		{Product: "Livro B", Category: "livros", Price: 50, PurchaseDate: day(2020, 3, 9), Seller: "Bruno", State: "BA", Lat: -13.29, Lon: -41.71},
		{Product: "Cadeira", Category: "moveis", Price: 300, PurchaseDate: day(2021, 2, 1), Seller: "Ana", State: "RS", Lat: -29.75, Lon: -53.25},
		{Product: "Mesa", Category: "moveis", Price: 700, PurchaseDate: day(2021, 6, 20), Seller: "Carla", State: "SP", Lat: -22.19, Lon: -48.79},
		{Product: "Fone", Category: "eletronicos", Price: 150, PurchaseDate: day(2022, 8, 14), Seller: "Bruno", State: "SP", Lat: -22.19, Lon: -48.79},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestAnalytics() *services.Analytics {
	return services.NewAnalytics(stubSource{records: testRecords()}, testLogger())
}

func createTestRenderer() *charts.Renderer {
	rd, err := charts.NewRenderer(config.ChartsConfig{Width: 640, Height: 360})
	if err != nil {
		panic(err)
	}
	return rd
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body
}

func TestAPIHandlers_Views(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		query   string
		wantLen int
	}{
		{"state revenue", h.HandleStateRevenue, "", 3},
		{"state revenue in the south", h.HandleStateRevenue, "?regiao=Sul", 1},
		{"monthly revenue 2020", h.HandleMonthlyRevenue, "?ano=2020", 3},
		{"category revenue", h.HandleCategoryRevenue, "", 3},
		{"state sales", h.HandleStateSales, "?vendedor=Ana", 2},
		{"monthly sales 2021", h.HandleMonthlySales, "?ano=2021", 5},
		{"category sales", h.HandleCategorySales, "?ano=2022", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/api/x"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
			}
			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("cache-control = %q", cc)
			}

			body := decodeEnvelope(t, w)
			if body["success"] != true {
				t.Errorf("success = %v, want true", body["success"])
			}
			data, ok := body["data"].([]any)
			if !ok {
				t.Fatalf("data is %T, want array", body["data"])
			}
			if len(data) != tt.wantLen {
				t.Errorf("len(data) = %d, want %d", len(data), tt.wantLen)
			}
		})
	}
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleSummary(w, httptest.NewRequest(http.MethodGet, "/api/summary?ano=2021", nil))

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	if data["revenue"] != 1000.0 {
		t.Errorf("revenue = %v, want 1000", data["revenue"])
	}
	if data["sales"] != 2.0 {
		t.Errorf("sales = %v, want 2", data["sales"])
	}
	if data["revenue_label"] != "R$ 1.00 mil" {
		t.Errorf("revenue_label = %v", data["revenue_label"])
	}
}

func TestAPIHandlers_HandleSellers(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleSellers(w, httptest.NewRequest(http.MethodGet, "/api/sellers?top=2", nil))

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	if got := len(data["sellers"].([]any)); got != 3 {
		t.Errorf("sellers = %d, want 3", got)
	}

	top := data["top_by_revenue"].([]any)
	if len(top) != 2 {
		t.Fatalf("top_by_revenue = %d entries, want 2", len(top))
	}
	if first := top[0].(map[string]any)["seller"]; first != "Carla" {
		t.Errorf("top seller = %v, want Carla", first)
	}

	bySales := data["top_by_sales"].([]any)
	if first := bySales[0].(map[string]any)["seller"]; first != "Ana" {
		t.Errorf("top seller by sales = %v, want Ana (tie broken by name)", first)
	}
}

func TestAPIHandlers_HandleDashboard(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/api/dashboard?regiao=Sudeste", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	for _, key := range []string{"filter", "sellers", "summary", "state_revenue", "monthly_revenue", "category_revenue", "seller_stats", "state_sales", "monthly_sales", "category_sales"} {
		if _, ok := data[key]; !ok {
			t.Errorf("report is missing %q", key)
		}
	}
	if _, ok := data["Records"]; ok {
		t.Error("raw records should not be serialized")
	}
}

func TestAPIHandlers_InvalidFilter(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	for _, query := range []string{"?ano=1999", "?ano=abc", "?regiao=Marte", "?top=11"} {
		t.Run(query, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleSummary(w, httptest.NewRequest(http.MethodGet, "/api/summary"+query, nil))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			body := decodeEnvelope(t, w)
			if body["success"] != false {
				t.Error("expected success=false")
			}
			if code := body["error"].(map[string]any)["code"]; code != "VALIDATION_ERROR" {
				t.Errorf("code = %v, want VALIDATION_ERROR", code)
			}
		})
	}
}

func TestAPIHandlers_UpstreamFailure(t *testing.T) {
	analytics := services.NewAnalytics(stubSource{err: errors.New("connection refused")}, testLogger())
	h := NewAPIHandlers(analytics, testLogger())

	w := httptest.NewRecorder()
	h.HandleSummary(w, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "UPSTREAM_ERROR") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", data["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	analytics := createTestAnalytics()
	h := NewAPIHandlers(analytics, testLogger())

	h.HandleSummary(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	w := httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	if data["fetches"] != 1.0 {
		t.Errorf("fetches = %v, want 1", data["fetches"])
	}
}
