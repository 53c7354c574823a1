package models

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Sellers: []string{" Ana ", "", "Ana", "Bruno"}}.Normalize()

	assert.Equal(t, RegionBrasil, f.Region)
	assert.Equal(t, MinYear, f.Year)
	assert.Equal(t, DefaultTopSellers, f.TopSellers)
	assert.Equal(t, []string{"Ana", "Bruno"}, f.Sellers)
}

func TestFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{"default", DefaultFilter(), false},
		{"region", Filter{Region: "Sul", AllYears: true, TopSellers: 5}, false},
		{"unknown region", Filter{Region: "Oeste", AllYears: true, TopSellers: 5}, true},
		{"year in range", Filter{Region: "Norte", Year: 2022, TopSellers: 5}, false},
		{"year too old", Filter{Region: "Norte", Year: 2019, TopSellers: 5}, true},
		{"year ignored for all years", Filter{Region: "Norte", AllYears: true, Year: 1999, TopSellers: 5}, false},
		{"top sellers too small", Filter{Region: "Sul", AllYears: true, TopSellers: 1}, true},
		{"top sellers too large", Filter{Region: "Sul", AllYears: true, TopSellers: 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilter_Query(t *testing.T) {
	assert.Equal(t, Query{}, DefaultFilter().Query())

	q := Filter{Region: "Centro-Oeste", Year: 2021, TopSellers: 5}.Query()
	assert.Equal(t, Query{Region: "centro-oeste", Year: "2021"}, q)
	assert.Equal(t, "centro-oeste_2021", q.Key())
	assert.Equal(t, "brasil_all", Query{}.Key())
}

func TestQuery_Matches(t *testing.T) {
	rec := SalesRecord{State: "SP", PurchaseDate: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)}

	require.Equal(t, "Sudeste", RegionOf("sp"))
	assert.True(t, Query{}.Matches(rec))
	assert.True(t, Query{Region: "sudeste", Year: "2021"}.Matches(rec))
	assert.False(t, Query{Region: "sul"}.Matches(rec))
	assert.False(t, Query{Year: "2022"}.Matches(rec))
	assert.Equal(t, "", RegionOf("XX"))
}

func TestFilterFromValues(t *testing.T) {
	f, err := FilterFromValues(url.Values{
		"regiao":   {"Nordeste"},
		"ano":      {"2022"},
		"vendedor": {"Ana", "Bruno", "Ana"},
		"top":      {"7"},
	})
	require.NoError(t, err)
	assert.Equal(t, Filter{Region: "Nordeste", Year: 2022, Sellers: []string{"Ana", "Bruno"}, TopSellers: 7}, f)

	again, err := FilterFromValues(f.Values())
	require.NoError(t, err)
	assert.Equal(t, f, again)

	f, err = FilterFromValues(url.Values{"ano": {"2021"}, "todos_anos": {"true"}})
	require.NoError(t, err)
	assert.True(t, f.AllYears)

	f, err = FilterFromValues(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultFilter().Normalize(), f)
}

func TestFilterFromValues_Invalid(t *testing.T) {
	for _, v := range []url.Values{
		{"ano": {"dois mil"}},
		{"ano": {"2030"}},
		{"top": {"x"}},
		{"top": {"50"}},
		{"regiao": {"Marte"}},
	} {
		_, err := FilterFromValues(v)
		assert.Error(t, err, v.Encode())
	}
}
