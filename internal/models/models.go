// Package models defines the domain entities for the currency-conversion bot.
package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency all rates are quoted against.
const BaseCurrency = "RUB"

// RateScale is the number of decimal digits a stored rate carries.
const RateScale = 4

// ResultScale is the number of decimal digits a conversion result carries.
const ResultScale = 2

// RateSnapshot is an immutable set of daily rates keyed by currency code.
// Each rate is the amount of base currency one unit of the foreign currency
// costs on that date.
type RateSnapshot struct {
	Date  string
	Rates map[string]decimal.Decimal
}

// IsEmpty reports whether the snapshot carries no usable rates.
func (s RateSnapshot) IsEmpty() bool {
	return len(s.Rates) == 0
}

// Rate returns the rate for the given currency code.
func (s RateSnapshot) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := s.Rates[code]
	return rate, ok
}

// Codes returns the snapshot's currency codes sorted lexicographically.
func (s RateSnapshot) Codes() []string {
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Clone returns a copy of the snapshot with its own rates map, so callers
// can hold it without aliasing cache-owned state.
func (s RateSnapshot) Clone() RateSnapshot {
	if s.Rates == nil {
		return RateSnapshot{Date: s.Date}
	}
	rates := make(map[string]decimal.Decimal, len(s.Rates))
	for code, rate := range s.Rates {
		rates[code] = rate
	}
	return RateSnapshot{Date: s.Date, Rates: rates}
}
