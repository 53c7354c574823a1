package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const cacheMaxAge = 5 * time.Minute

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// report resolves the request filter and builds its report, writing the
// error response itself when that fails.
func (h *APIHandlers) report(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	filter, err := models.FilterFromValues(r.URL.Query())
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.ValidationWrap(err, err.Error()))
		return nil, false
	}

	report, err := h.analytics.Report(r.Context(), filter)
	if err != nil {
		errors.WriteError(w, r, h.logger, toAppError(err))
		return nil, false
	}
	return report, true
}

func (h *APIHandlers) serve(view func(*models.Report) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := h.report(w, r)
		if !ok {
			return
		}
		errors.WriteCached(w, view(report), cacheMaxAge)
	}
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep })(w, r)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep.Summary })(w, r)
}

func (h *APIHandlers) HandleStateRevenue(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep.StateRevenue })(w, r)
}

func (h *APIHandlers) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep.MonthlyRevenue })(w, r)
}

func (h *APIHandlers) HandleCategoryRevenue(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep.CategoryRevenue })(w, r)
}

func (h *APIHandlers) HandleStateSales(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep.StateSales })(w, r)
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep.MonthlySales })(w, r)
}

func (h *APIHandlers) HandleCategorySales(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any { return rep.CategorySales })(w, r)
}

type sellersResponse struct {
	Sellers      []string             `json:"sellers"`
	Stats        []models.SellerStats `json:"stats"`
	TopByRevenue []models.SellerStats `json:"top_by_revenue"`
	TopBySales   []models.SellerStats `json:"top_by_sales"`
}

func (h *APIHandlers) HandleSellers(w http.ResponseWriter, r *http.Request) {
	h.serve(func(rep *models.Report) any {
		n := rep.Filter.TopSellers
		return sellersResponse{
			Sellers:      rep.Sellers,
			Stats:        rep.SellerStats,
			TopByRevenue: services.TopSellersByRevenue(rep.SellerStats, n),
			TopBySales:   services.TopSellersBySales(rep.SellerStats, n),
		}
	})(w, r)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
