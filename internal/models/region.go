package models

import (
	"strconv"
	"strings"
)

var stateRegions = map[string]string{
	"DF": "Centro-Oeste", "GO": "Centro-Oeste", "MT": "Centro-Oeste", "MS": "Centro-Oeste",
	"AC": "Norte", "AP": "Norte", "AM": "Norte", "PA": "Norte", "RO": "Norte", "RR": "Norte", "TO": "Norte",
	"AL": "Nordeste", "BA": "Nordeste", "CE": "Nordeste", "MA": "Nordeste", "PB": "Nordeste",
	"PE": "Nordeste", "PI": "Nordeste", "RN": "Nordeste", "SE": "Nordeste",
	"PR": "Sul", "RS": "Sul", "SC": "Sul",
	"ES": "Sudeste", "MG": "Sudeste", "RJ": "Sudeste", "SP": "Sudeste",
}

// RegionOf returns the macro-region of a state code, or "" when unknown.
func RegionOf(state string) string {
	return stateRegions[strings.ToUpper(strings.TrimSpace(state))]
}

// Matches reports whether a record satisfies the query the same way the
// sales API would.
func (q Query) Matches(r SalesRecord) bool {
	if q.Region != "" && !strings.EqualFold(RegionOf(r.State), q.Region) {
		return false
	}
	if q.Year != "" && strconv.Itoa(r.PurchaseDate.Year()) != q.Year {
		return false
	}
	return true
}
