package handlers

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type PageHandlers struct {
	analytics *services.Analytics
	renderer  *charts.Renderer
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, renderer *charts.Renderer, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		renderer:  renderer,
		logger:    logger,
	}
}

// HandleDashboard renders the whole page for the filter in the query
// string. Failures still render the page, with the error shown in place of
// the charts.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var (
		view   templates.View
		status int
	)
	filter, err := models.FilterFromValues(r.URL.Query())
	if err != nil {
		h.logger.Warn("invalid dashboard filter", "error", err, "query", r.URL.RawQuery)
		view, status = buildView(r.Context(), h.analytics, h.renderer, h.logger, models.DefaultFilter())
		if status == http.StatusOK {
			status = http.StatusBadRequest
			view.Error = "Filtro inválido: " + err.Error()
		}
	} else {
		view, status = buildView(r.Context(), h.analytics, h.renderer, h.logger, filter)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Page(view).Render(r.Context(), w); err != nil {
		h.logger.Error("render page", "error", err)
	}
}
