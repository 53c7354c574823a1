package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
)

type Server struct {
	analytics    *services.Analytics
	mux          *http.ServeMux
	logger       *slog.Logger
	pageHandlers *handlers.PageHandlers
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	fileHandlers *handlers.FileHandlers
}

func NewServer(analytics *services.Analytics, renderer *charts.Renderer, logger *slog.Logger) *Server {
	s := &Server{
		analytics:    analytics,
		mux:          http.NewServeMux(),
		logger:       logger,
		pageHandlers: handlers.NewPageHandlers(analytics, renderer, logger),
		apiHandlers:  handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:  handlers.NewSSEHandlers(analytics, renderer, logger),
		fileHandlers: handlers.NewFileHandlers(analytics, renderer, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/revenue/states", s.apiHandlers.HandleStateRevenue)
	s.mux.HandleFunc("GET /api/revenue/monthly", s.apiHandlers.HandleMonthlyRevenue)
	s.mux.HandleFunc("GET /api/revenue/categories", s.apiHandlers.HandleCategoryRevenue)
	s.mux.HandleFunc("GET /api/sales/states", s.apiHandlers.HandleStateSales)
	s.mux.HandleFunc("GET /api/sales/monthly", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/sales/categories", s.apiHandlers.HandleCategorySales)
	s.mux.HandleFunc("GET /api/sellers", s.apiHandlers.HandleSellers)

	// Downloads
	s.mux.HandleFunc("GET /charts/{name}", s.fileHandlers.HandleChart)
	s.mux.HandleFunc("GET /export/vendas.xlsx", s.fileHandlers.HandleExport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
