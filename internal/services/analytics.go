package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/source"
)

const warmWorkers = 3

var (
	ErrInvalidFilter = errors.New("invalid filter")
	ErrSource        = errors.New("sales source unavailable")
)

type cacheStatser interface {
	Stats() source.CacheStats
}

type Analytics struct {
	source source.Fetcher
	logger *slog.Logger

	fetches atomic.Int64
	failed  atomic.Int64

	mu          sync.RWMutex
	lastFetch   time.Time
	lastRecords int
}

func NewAnalytics(src source.Fetcher, logger *slog.Logger) *Analytics {
	return &Analytics{
		source: src,
		logger: logger,
	}
}

// Report fetches the records selected by filter and computes every view of
// the dashboard.
func (a *Analytics) Report(ctx context.Context, filter models.Filter) (*models.Report, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	records, err := a.fetch(ctx, filter.Query())
	if err != nil {
		return nil, err
	}

	return Build(ctx, records, filter)
}

// Build computes a report from records that already match the filter's
// region and year. The seller list is taken before the seller filter.
func Build(ctx context.Context, records []models.SalesRecord, filter models.Filter) (*models.Report, error) {
	report := &models.Report{
		Filter:    filter,
		Sellers:   UniqueSellers(records),
		FetchedAt: time.Now().UTC(),
	}

	selected := FilterSellers(records, filter.Sellers)
	report.Records = selected

	g, ctx := errgroup.WithContext(ctx)
	views := []func(){
		func() { report.Summary = Summarize(selected) },
		func() { report.StateRevenue = RevenueByState(selected) },
		func() { report.MonthlyRevenue = MonthlyRevenue(selected) },
		func() { report.CategoryRevenue = RevenueByCategory(selected) },
		func() { report.SellerStats = SellerTotals(selected) },
		func() { report.StateSales = SalesByState(selected) },
		func() { report.MonthlySales = MonthlySales(selected) },
		func() { report.CategorySales = SalesByCategory(selected) },
	}
	for _, view := range views {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			view()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

func (a *Analytics) fetch(ctx context.Context, q models.Query) ([]models.SalesRecord, error) {
	a.fetches.Add(1)

	records, err := a.source.Fetch(ctx, q)
	if err != nil {
		a.failed.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}

	a.mu.Lock()
	a.lastFetch = time.Now()
	a.lastRecords = len(records)
	a.mu.Unlock()

	return records, nil
}

// Warm fetches every region for the whole period so later requests are
// answered from the source cache.
func (a *Analytics) Warm(ctx context.Context) error {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmWorkers)
	for _, region := range models.Regions {
		filter := models.DefaultFilter()
		filter.Region = region
		g.Go(func() error {
			if _, err := a.fetch(ctx, filter.Query()); err != nil {
				return fmt.Errorf("warm %s: %w", region, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("source cache warmed", "regions", len(models.Regions), "duration", time.Since(start))
	return nil
}

// Stats is used by the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"fetches":        a.fetches.Load(),
		"failed_fetches": a.failed.Load(),
		"last_fetch":     a.lastFetch,
		"last_records":   a.lastRecords,
	}
	if cs, ok := a.source.(cacheStatser); ok {
		stats["cache"] = cs.Stats()
	}
	return stats
}
