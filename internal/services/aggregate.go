package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/format"
	"sales-dashboard/internal/models"
)

// UniqueSellers lists every seller present in records, sorted by name.
func UniqueSellers(records []models.SalesRecord) []string {
	seen := make(map[string]struct{})
	sellers := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Seller]; ok {
			continue
		}
		seen[r.Seller] = struct{}{}
		sellers = append(sellers, r.Seller)
	}
	slices.Sort(sellers)
	return sellers
}

// FilterSellers keeps the records sold by one of sellers. An empty seller
// list keeps everything.
func FilterSellers(records []models.SalesRecord, sellers []string) []models.SalesRecord {
	if len(sellers) == 0 {
		return records
	}

	wanted := make(map[string]struct{}, len(sellers))
	for _, s := range sellers {
		wanted[s] = struct{}{}
	}

	filtered := make([]models.SalesRecord, 0, len(records))
	for _, r := range records {
		if _, ok := wanted[r.Seller]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Revenue sums are kept in decimal and converted to float64 once per
// group, so every view adds up to the same total as Summarize.
func price(r models.SalesRecord) decimal.Decimal {
	return decimal.NewFromFloat(r.Price)
}

func count(models.SalesRecord) decimal.Decimal {
	return decimal.NewFromInt(1)
}

func Summarize(records []models.SalesRecord) models.Summary {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(price(r))
	}

	return models.Summary{
		Revenue:      total.InexactFloat64(),
		Sales:        len(records),
		RevenueLabel: format.Decimal(total, "R$"),
		SalesLabel:   format.Number(float64(len(records)), ""),
	}
}

// RevenueByState sums prices per state. Coordinates come from the first
// record seen for the state.
func RevenueByState(records []models.SalesRecord) []models.StateRevenue {
	groups := make(map[string]*models.StateRevenue)
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		if _, ok := groups[r.State]; !ok {
			groups[r.State] = &models.StateRevenue{State: r.State, Lat: r.Lat, Lon: r.Lon}
		}
		sums[r.State] = sums[r.State].Add(price(r))
	}

	result := make([]models.StateRevenue, 0, len(groups))
	for state, g := range groups {
		g.Revenue = sums[state].InexactFloat64()
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.StateRevenue) int {
		return byValueDesc(a.Revenue, b.Revenue, a.State, b.State)
	})
	return result
}

func SalesByState(records []models.SalesRecord) []models.StateSales {
	groups := make(map[string]*models.StateSales)
	for _, r := range records {
		g, ok := groups[r.State]
		if !ok {
			g = &models.StateSales{State: r.State, Lat: r.Lat, Lon: r.Lon}
			groups[r.State] = g
		}
		g.Sales++
	}

	result := make([]models.StateSales, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.StateSales) int {
		return byValueDesc(float64(a.Sales), float64(b.Sales), a.State, b.State)
	})
	return result
}

func MonthlyRevenue(records []models.SalesRecord) []models.MonthlyValue {
	return monthly(records, price)
}

func MonthlySales(records []models.SalesRecord) []models.MonthlyValue {
	return monthly(records, count)
}

// monthly buckets records by calendar month. Every month between the first
// and the last purchase gets a bucket, empty ones with a zero value.
func monthly(records []models.SalesRecord, value func(models.SalesRecord) decimal.Decimal) []models.MonthlyValue {
	if len(records) == 0 {
		return []models.MonthlyValue{}
	}

	sums := make(map[time.Time]decimal.Decimal)
	first, last := monthStart(records[0].PurchaseDate), monthStart(records[0].PurchaseDate)
	for _, r := range records {
		m := monthStart(r.PurchaseDate)
		sums[m] = sums[m].Add(value(r))
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	result := make([]models.MonthlyValue, 0, len(sums))
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		result = append(result, models.MonthlyValue{
			Month:     m,
			Year:      m.Year(),
			MonthName: m.Month().String(),
			Value:     sums[m].InexactFloat64(),
		})
	}
	return result
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func RevenueByCategory(records []models.SalesRecord) []models.CategoryValue {
	return byCategory(records, price)
}

func SalesByCategory(records []models.SalesRecord) []models.CategoryValue {
	return byCategory(records, count)
}

func byCategory(records []models.SalesRecord, value func(models.SalesRecord) decimal.Decimal) []models.CategoryValue {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		sums[r.Category] = sums[r.Category].Add(value(r))
	}

	result := make([]models.CategoryValue, 0, len(sums))
	for category, v := range sums {
		result = append(result, models.CategoryValue{Category: category, Value: v.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.CategoryValue) int {
		return byValueDesc(a.Value, b.Value, a.Category, b.Category)
	})
	return result
}

// SellerTotals returns revenue and sales count per seller, sorted by name.
func SellerTotals(records []models.SalesRecord) []models.SellerStats {
	groups := make(map[string]*models.SellerStats)
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		g, ok := groups[r.Seller]
		if !ok {
			g = &models.SellerStats{Seller: r.Seller}
			groups[r.Seller] = g
		}
		sums[r.Seller] = sums[r.Seller].Add(price(r))
		g.Sales++
	}

	result := make([]models.SellerStats, 0, len(groups))
	for seller, g := range groups {
		g.Revenue = sums[seller].InexactFloat64()
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.SellerStats) int {
		return cmp.Compare(a.Seller, b.Seller)
	})
	return result
}

func TopSellersByRevenue(stats []models.SellerStats, n int) []models.SellerStats {
	return topSellers(stats, n, func(s models.SellerStats) float64 { return s.Revenue })
}

func TopSellersBySales(stats []models.SellerStats, n int) []models.SellerStats {
	return topSellers(stats, n, func(s models.SellerStats) float64 { return float64(s.Sales) })
}

func topSellers(stats []models.SellerStats, n int, key func(models.SellerStats) float64) []models.SellerStats {
	ranked := slices.Clone(stats)
	if ranked == nil {
		ranked = []models.SellerStats{}
	}
	slices.SortFunc(ranked, func(a, b models.SellerStats) int {
		return byValueDesc(key(a), key(b), a.Seller, b.Seller)
	})
	return head(ranked, n)
}

// head returns at most the first n elements.
func head[T any](s []T, n int) []T {
	if n < 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func byValueDesc(a, b float64, nameA, nameB string) int {
	if c := cmp.Compare(b, a); c != 0 {
		return c
	}
	return cmp.Compare(nameA, nameB)
}
