package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote stores the latest exchange rate fetched from the upstream provider
// for one directional currency pair. (USD,NGN) and (NGN,USD) are distinct
// records and are never derived from each other.
// Note: Rate uses github.com/shopspring/decimal to avoid rounding drift.
type Quote struct {
	SourceCurrency      string          `json:"sourceCurrency"`      // 3-letter code, uppercase
	DestinationCurrency string          `json:"destinationCurrency"` // 3-letter code, uppercase
	Rate                decimal.Decimal `json:"rate"`                // source -> destination, per unit
	SourceAmount        decimal.Decimal `json:"sourceAmount"`
	DestinationAmount   decimal.Decimal `json:"destinationAmount"`
	LastUpdated         time.Time       `json:"lastUpdated"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// PairKey returns the canonical "<SRC>_<DST>" key for this quote.
func (q Quote) PairKey() string {
	return PairKey(q.SourceCurrency, q.DestinationCurrency)
}

// Age returns how long ago the quote was last refreshed.
func (q Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.LastUpdated)
}

// PairKey builds the canonical "<SRC>_<DST>" key for a currency pair.
func PairKey(source, destination string) string {
	return source + "_" + destination
}
