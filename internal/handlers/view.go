package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

// toAppError maps service failures to API errors.
func toAppError(err error) error {
	switch {
	case stderrors.Is(err, services.ErrInvalidFilter):
		return errors.ValidationWrap(err, err.Error())
	case stderrors.Is(err, services.ErrSource):
		return errors.UpstreamWrap(err, "Sales data is currently unavailable")
	}
	return err
}

// buildView computes the report and charts for filter. On failure the view
// carries a message for the user and the status says why it failed.
func buildView(ctx context.Context, analytics *services.Analytics, renderer *charts.Renderer, logger *slog.Logger, filter models.Filter) (templates.View, int) {
	v := templates.View{Filter: filter.Normalize()}

	report, err := analytics.Report(ctx, filter)
	if err == nil {
		var set *charts.Set
		set, err = renderer.RenderAll(ctx, report)
		if err == nil {
			v.Filter = report.Filter
			v.Sellers = report.Sellers
			v.Report = report
			v.Charts = set
			return v, http.StatusOK
		}
	}

	logger.Error("failed to build dashboard view", "error", err, "filter", filter)

	status := errors.As(toAppError(err)).StatusCode
	switch status {
	case http.StatusBadRequest:
		v.Filter = models.DefaultFilter().Normalize()
		v.Error = "Filtro inválido: " + err.Error()
	case http.StatusBadGateway:
		v.Error = "Não foi possível carregar os dados de vendas. Tente novamente em instantes."
	default:
		v.Error = "Erro inesperado ao montar o dashboard."
	}
	return v, status
}
