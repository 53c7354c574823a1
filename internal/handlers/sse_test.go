package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"sales-dashboard/internal/services"
)

func sseRequest(signals string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/sse/dashboard?datastar="+url.QueryEscape(signals), nil)
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	renderer := createTestRenderer()
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, renderer, logger)

	if handlers.analytics != analytics || handlers.renderer != renderer || handlers.logger != logger {
		t.Error("NewSSEHandlers() should set every field")
	}
}

func TestFlexInt(t *testing.T) {
	var s dashboardSignals
	if err := json.Unmarshal([]byte(`{"ano":"2021","topVendedores":7}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Year != 2021 || s.TopSellers != 7 {
		t.Errorf("got year %d top %d", s.Year, s.TopSellers)
	}

	if err := json.Unmarshal([]byte(`{"ano":"","topVendedores":null}`), &s); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"ano":"dois mil"}`), &s); err == nil {
		t.Error("expected error for non numeric year")
	}
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"regiao":"Nordeste","todosAnos":true,"ano":"2020","vendedores":[],"topVendedores":"3","aba":"receita"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, want text/event-stream", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"event: datastar-patch-elements",
		`<section id="dashboard">`,
		`<select id="vendedores"`,
		"Bruno",
		`<a id="exportar" href="/export/vendas.xlsx?regiao=Nordeste&amp;top=3">`,
		"event: datastar-patch-signals",
		`"topVendedores":3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected stream to contain %q", want)
		}
	}

	// Only Bruno sold in the Nordeste.
	if strings.Contains(body, `value="Carla"`) {
		t.Error("seller list should be limited to the selected region")
	}
}

func TestSSEHandlers_HandleDashboard_InvalidFilter(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"regiao":"Brasil","todosAnos":false,"ano":2031,"topVendedores":5}`))

	body := w.Body.String()
	if !strings.Contains(body, `class="alert"`) || !strings.Contains(body, "Filtro inválido") {
		t.Errorf("expected an error alert in the patch, got %s", body)
	}
	// The submitted inputs stay as the user left them.
	if strings.Contains(body, "datastar-patch-signals") {
		t.Error("signals should not be reset after an invalid filter")
	}
	if strings.Contains(body, `id="vendedores"`) || strings.Contains(body, `id="exportar"`) {
		t.Error("only the dashboard should be patched after an invalid filter")
	}
}

func TestSSEHandlers_HandleDashboard_UpstreamFailure(t *testing.T) {
	analytics := services.NewAnalytics(stubSource{err: errors.New("connection refused")}, testLogger())
	handlers := NewSSEHandlers(analytics, createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"regiao":"Sul","todosAnos":true,"vendedores":["Ana"],"topVendedores":5}`))

	body := w.Body.String()
	if !strings.Contains(body, `class="alert"`) {
		t.Errorf("expected an error alert in the patch, got %s", body)
	}
	if strings.Contains(body, `<select id="vendedores"`) {
		t.Error("seller list should be kept when the source fails")
	}
	if strings.Contains(body, "datastar-patch-signals") {
		t.Error("signals should not be reset when the source fails")
	}
}

func TestSSEHandlers_HandleDashboard_BadSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"regiao":`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
