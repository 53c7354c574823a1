package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sales-dashboard/internal/services"
)

func TestPageHandlers_HandleDashboard(t *testing.T) {
	h := NewPageHandlers(createTestAnalytics(), createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	h.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/?regiao=Sudeste&ano=2021", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content-type = %q", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<h1>DASHBOARD</h1>",
		"Dados de todo o período",
		`<section id="dashboard">`,
		"Quantidade de vendedores",
		"<svg",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestPageHandlers_HandleDashboard_Errors(t *testing.T) {
	tests := []struct {
		name       string
		source     stubSource
		query      string
		wantStatus int
		wantText   string
	}{
		{"invalid filter", stubSource{records: testRecords()}, "?ano=1800", http.StatusBadRequest, "Filtro inválido"},
		{"unparsable filter", stubSource{records: testRecords()}, "?top=muitos", http.StatusBadRequest, "Filtro inválido"},
		{"source down", stubSource{err: errors.New("timeout")}, "", http.StatusBadGateway, "Não foi possível carregar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analytics := services.NewAnalytics(tt.source, testLogger())
			h := NewPageHandlers(analytics, createTestRenderer(), testLogger())

			w := httptest.NewRecorder()
			h.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := w.Body.String()
			if !strings.Contains(body, tt.wantText) {
				t.Errorf("expected page to contain %q", tt.wantText)
			}
			if !strings.Contains(body, `<aside id="filtros">`) {
				t.Error("filters should still render on error")
			}
		})
	}
}

func TestPageHandlers_HandleDashboard_EscapesSourceText(t *testing.T) {
	records := testRecords()
	records[0].Seller = "<img/src=x/onerror=alert(1)>"
	records[1].Category = "<svg/onload=alert(2)>"
	analytics := services.NewAnalytics(stubSource{records: records}, testLogger())
	h := NewPageHandlers(analytics, createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	h.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, raw := range []string{"<img", "<svg/onload"} {
		if strings.Contains(body, raw) {
			t.Errorf("page contains unescaped %q", raw)
		}
	}
	if !strings.Contains(body, "&lt;img/src=x/onerror=alert(1)&gt;") {
		t.Error("seller name should be rendered escaped")
	}
}

func TestFileHandlers_HandleChart_EscapesSourceText(t *testing.T) {
	records := testRecords()
	records[4].Seller = "<img src=x onerror=alert(1)>"
	analytics := services.NewAnalytics(stubSource{records: records}, testLogger())
	h := NewFileHandlers(analytics, createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	h.HandleChart(w, chartRequest("top-vendedores-receita", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "<img") {
		t.Error("chart svg contains an unescaped seller name")
	}
}

func TestPageHandlers_UnknownPath(t *testing.T) {
	h := NewPageHandlers(createTestAnalytics(), createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	h.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func chartRequest(name, query string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/charts/"+name+query, nil)
	r.SetPathValue("name", name)
	return r
}

func TestFileHandlers_HandleChart(t *testing.T) {
	h := NewFileHandlers(createTestAnalytics(), createTestRenderer(), testLogger())

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"receita-mensal.svg", "", http.StatusOK},
		{"mapa-quantidade", "?regiao=Sul", http.StatusOK},
		{"top-vendedores-receita", "?top=2", http.StatusOK},
		{"receita-categorias", "?vendedor=Ninguem", http.StatusNoContent},
		{"pizza", "", http.StatusNotFound},
		{"receita-mensal", "?ano=3000", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name+tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleChart(w, chartRequest(tt.name, tt.query))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
					t.Errorf("content-type = %q", ct)
				}
				if !strings.Contains(w.Body.String(), "<svg") {
					t.Error("expected an svg document")
				}
			}
		})
	}
}

func TestFileHandlers_HandleExport(t *testing.T) {
	h := NewFileHandlers(createTestAnalytics(), createTestRenderer(), testLogger())

	w := httptest.NewRecorder()
	h.HandleExport(w, httptest.NewRequest(http.MethodGet, "/export/vendas.xlsx?regiao=Sudeste&ano=2021", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "vendas_sudeste_2021.xlsx") {
		t.Errorf("content-disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip based xlsx body")
	}
}
