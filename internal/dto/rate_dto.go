package dto

import (
	"fmt"

	"github.com/sendmoni/rates-backend/internal/apperrors"
	"github.com/sendmoni/rates-backend/internal/models"
	"github.com/shopspring/decimal"
)

// StatusSuccess is the provider's marker for a usable quote payload.
const StatusSuccess = "success"

// QuoteSide is one leg of a quote: a currency and the amount on that side.
type QuoteSide struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// QuoteData carries the per-unit rate and both legs of the reference quote.
type QuoteData struct {
	Rate        float64   `json:"rate"`
	Source      QuoteSide `json:"source"`
	Destination QuoteSide `json:"destination"`
}

// ProviderQuoteResponse is the strict boundary shape for provider payloads.
// The same shape is served verbatim from the API, cached in the hot cache
// and pushed over the change feed.
type ProviderQuoteResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Data    *QuoteData `json:"data"`
}

// Validate checks the payload on ingress from the provider. Anything that
// fails here never reaches the store or the cache. A well-formed payload
// with a non-success status is the provider saying no quote exists for the
// pair, so it maps to ErrNotFound; malformed payloads map to ErrUpstream.
func (r *ProviderQuoteResponse) Validate() error {
	if r.Status != StatusSuccess {
		return fmt.Errorf("%w: provider returned status %q: %s", apperrors.ErrNotFound, r.Status, r.Message)
	}
	if r.Data == nil {
		return fmt.Errorf("%w: provider response has no data", apperrors.ErrUpstream)
	}
	if r.Data.Rate <= 0 {
		return fmt.Errorf("%w: provider returned non-positive rate %v", apperrors.ErrUpstream, r.Data.Rate)
	}
	if len(r.Data.Source.Currency) != 3 || len(r.Data.Destination.Currency) != 3 {
		return fmt.Errorf("%w: provider returned malformed currency codes", apperrors.ErrUpstream)
	}
	return nil
}

// ToQuote projects the provider payload onto a store record.
func (r *ProviderQuoteResponse) ToQuote(source, destination string) models.Quote {
	return models.Quote{
		SourceCurrency:      source,
		DestinationCurrency: destination,
		Rate:                decimal.NewFromFloat(r.Data.Rate),
		SourceAmount:        decimal.NewFromFloat(r.Data.Source.Amount),
		DestinationAmount:   decimal.NewFromFloat(r.Data.Destination.Amount),
	}
}

// FromQuote shapes a store record back into the provider response shape.
func FromQuote(q models.Quote) ProviderQuoteResponse {
	rate, _ := q.Rate.Float64()
	srcAmount, _ := q.SourceAmount.Float64()
	dstAmount, _ := q.DestinationAmount.Float64()
	return ProviderQuoteResponse{
		Status:  StatusSuccess,
		Message: "Transfer amount fetched",
		Data: &QuoteData{
			Rate:        rate,
			Source:      QuoteSide{Currency: q.SourceCurrency, Amount: srcAmount},
			Destination: QuoteSide{Currency: q.DestinationCurrency, Amount: dstAmount},
		},
	}
}

// APIResponse is the generic envelope for non-quote endpoints.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// GetRateRequest binds the query parameters of GET /rates.
type GetRateRequest struct {
	SourceCurrency      string `form:"source_currency" binding:"required,currency"`
	DestinationCurrency string `form:"destination_currency" binding:"required,currency"`
}

// ChangedRate describes one quote refreshed inside the audit window.
type ChangedRate struct {
	SourceCurrency      string  `json:"source_currency"`
	DestinationCurrency string  `json:"destination_currency"`
	Rate                float64 `json:"rate"`
	LastUpdated         string  `json:"last_updated"`
	DaysSinceUpdate     int     `json:"days_since_update"`
	HoursSinceUpdate    float64 `json:"hours_since_update"`
}

// RateChangeReport is the point-in-time audit over the quote store.
type RateChangeReport struct {
	HasChanges        bool          `json:"has_changes"`
	TotalRates        int           `json:"total_rates"`
	UpdatedInLastDays int           `json:"updated_in_last_5_days"`
	CheckPeriodDays   int           `json:"check_period_days"`
	CheckDate         string        `json:"check_date"`
	ChangedRates      []ChangedRate `json:"changed_rates"`
}
