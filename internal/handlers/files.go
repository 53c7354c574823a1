package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

// FileHandlers serve the dashboard in downloadable form: single chart
// images and the spreadsheet of the filtered records.
type FileHandlers struct {
	api      *APIHandlers
	renderer *charts.Renderer
	logger   *slog.Logger
}

func NewFileHandlers(analytics *services.Analytics, renderer *charts.Renderer, logger *slog.Logger) *FileHandlers {
	return &FileHandlers{
		api:      NewAPIHandlers(analytics, logger),
		renderer: renderer,
		logger:   logger,
	}
}

func (h *FileHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(r.PathValue("name"), ".svg")
	if !slices.Contains(charts.IDs(), id) {
		errors.WriteError(w, r, h.logger, errors.NotFound("Unknown chart "+id))
		return
	}

	report, ok := h.api.report(w, r)
	if !ok {
		return
	}

	c, _, err := h.renderer.Render(report, id)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render chart"))
		return
	}
	if c.Empty {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(cacheMaxAge.Seconds())))
	w.Write([]byte(c.SVG))
}

func (h *FileHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.api.report(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report.Records); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to build spreadsheet"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="vendas_`+exportName(report.Filter)+`.xlsx"`)
	w.Write(buf.Bytes())
}

func exportName(f models.Filter) string {
	return f.Query().Key()
}
