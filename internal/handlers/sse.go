package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// flexInt accepts numbers sent either as JSON numbers or as strings, since
// range and number inputs bind their value as text.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// dashboardSignals mirrors the signals declared by templates.Signals.
type dashboardSignals struct {
	Region     string   `json:"regiao"`
	AllYears   bool     `json:"todosAnos"`
	Year       flexInt  `json:"ano"`
	Sellers    []string `json:"vendedores"`
	TopSellers flexInt  `json:"topVendedores"`
}

func (s dashboardSignals) filter() models.Filter {
	return models.Filter{
		Region:     s.Region,
		AllYears:   s.AllYears,
		Year:       int(s.Year),
		Sellers:    s.Sellers,
		TopSellers: int(s.TopSellers),
	}
}

type SSEHandlers struct {
	analytics *services.Analytics
	renderer  *charts.Renderer
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, renderer *charts.Renderer, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		renderer:  renderer,
		logger:    logger,
	}
}

// HandleDashboard recomputes the dashboard for the signals sent by the page
// and patches the dashboard section, the seller list and the export link.
// A failed view only replaces the dashboard with its alert, leaving the
// user's inputs and seller list as they were.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, r, h.logger, errors.BadRequestWrap(err, "Invalid datastar signals"))
		return
	}

	sse := datastar.NewSSE(w, r)

	view, _ := buildView(r.Context(), h.analytics, h.renderer, h.logger, signals.filter())

	components := []datastar.TemplComponent{templates.Dashboard(view)}
	if view.Error == "" {
		components = append(components,
			templates.SellerOptions(view.Sellers, view.Filter.Sellers),
			templates.ExportLink(view.Filter),
		)
	}
	for _, c := range components {
		if err := sse.PatchElementTempl(c); err != nil {
			h.logger.Warn("patch elements", "error", err)
			return
		}
	}

	if view.Error != "" {
		return
	}

	// Normalized values go back so the inputs show what was applied.
	jsonData, err := json.Marshal(map[string]any{
		"regiao":        view.Filter.Region,
		"ano":           view.Filter.Year,
		"vendedores":    view.Filter.Sellers,
		"topVendedores": view.Filter.TopSellers,
	})
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}
