package models

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	RegionBrasil = "Brasil"

	MinYear = 2020
	MaxYear = 2023

	MinTopSellers     = 2
	MaxTopSellers     = 10
	DefaultTopSellers = 5
)

// Regions lists the selectable regions in display order. RegionBrasil
// means no region filter.
var Regions = []string{RegionBrasil, "Centro-Oeste", "Norte", "Nordeste", "Sul", "Sudeste"}

type Filter struct {
	Region     string   `json:"region"`
	AllYears   bool     `json:"all_years"`
	Year       int      `json:"year"`
	Sellers    []string `json:"sellers"`
	TopSellers int      `json:"top_sellers"`
}

// Query is the part of a Filter that is resolved by the sales API itself.
type Query struct {
	Region string
	Year   string
}

func DefaultFilter() Filter {
	return Filter{
		Region:     RegionBrasil,
		AllYears:   true,
		Year:       MinYear,
		TopSellers: DefaultTopSellers,
	}
}

// Normalize fills zero values with defaults and removes empty or repeated
// seller names.
func (f Filter) Normalize() Filter {
	if f.Region == "" {
		f.Region = RegionBrasil
	}
	if f.Year == 0 {
		f.Year = MinYear
	}
	if f.TopSellers == 0 {
		f.TopSellers = DefaultTopSellers
	}

	sellers := make([]string, 0, len(f.Sellers))
	for _, s := range f.Sellers {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(sellers, s) {
			sellers = append(sellers, s)
		}
	}
	f.Sellers = sellers
	return f
}

func (f Filter) Validate() error {
	if !slices.Contains(Regions, f.Region) {
		return fmt.Errorf("unknown region %q, must be one of: %s", f.Region, strings.Join(Regions, ", "))
	}
	if !f.AllYears && (f.Year < MinYear || f.Year > MaxYear) {
		return fmt.Errorf("year must be between %d and %d, got %d", MinYear, MaxYear, f.Year)
	}
	if f.TopSellers < MinTopSellers || f.TopSellers > MaxTopSellers {
		return fmt.Errorf("top sellers must be between %d and %d, got %d", MinTopSellers, MaxTopSellers, f.TopSellers)
	}
	return nil
}

func (f Filter) Query() Query {
	q := Query{}
	if f.Region != RegionBrasil {
		q.Region = strings.ToLower(f.Region)
	}
	if !f.AllYears {
		q.Year = strconv.Itoa(f.Year)
	}
	return q
}

// Key identifies a query in caches and logs.
func (q Query) Key() string {
	region := q.Region
	if region == "" {
		region = "brasil"
	}
	year := q.Year
	if year == "" {
		year = "all"
	}
	return region + "_" + year
}

// Values encodes the filter as the query string understood by
// FilterFromValues.
func (f Filter) Values() url.Values {
	v := url.Values{}
	v.Set("regiao", f.Region)
	if !f.AllYears {
		v.Set("ano", strconv.Itoa(f.Year))
	}
	for _, s := range f.Sellers {
		v.Add("vendedor", s)
	}
	v.Set("top", strconv.Itoa(f.TopSellers))
	return v
}

// FilterFromValues reads a filter from query parameters: regiao, ano
// (absent or empty for the whole period), vendedor (repeatable) and top.
func FilterFromValues(v url.Values) (Filter, error) {
	f := DefaultFilter()

	if region := v.Get("regiao"); region != "" {
		f.Region = region
	}

	if year := v.Get("ano"); year != "" && v.Get("todos_anos") != "true" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid year %q", year)
		}
		f.AllYears = false
		f.Year = y
	}

	f.Sellers = v["vendedor"]

	if top := v.Get("top"); top != "" {
		n, err := strconv.Atoi(top)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid top sellers %q", top)
		}
		f.TopSellers = n
	}

	f = f.Normalize()
	return f, f.Validate()
}
