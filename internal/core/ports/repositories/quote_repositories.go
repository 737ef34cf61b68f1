package repositories

import (
	"context"
	"time"

	"github.com/sendmoni/rates-backend/internal/models"
)

// QuoteReader defines read operations over stored quotes.
type QuoteReader interface {
	// FindQuote retrieves the quote for one directional pair.
	// Returns apperrors.ErrNotFound when no record exists.
	FindQuote(ctx context.Context, sourceCurrency, destinationCurrency string) (*models.Quote, error)

	// CountQuotes returns the total number of stored quotes.
	CountQuotes(ctx context.Context) (int, error)

	// FindQuotesUpdatedSince lists quotes refreshed at or after the cutoff,
	// most recently updated first.
	FindQuotesUpdatedSince(ctx context.Context, cutoff time.Time) ([]models.Quote, error)
}

// QuoteWriter defines write operations over stored quotes.
type QuoteWriter interface {
	// UpsertQuote inserts the quote or, when the pair already exists,
	// overwrites rate, amounts and last_updated. created_at is immutable.
	UpsertQuote(ctx context.Context, quote models.Quote) error
}

// QuoteRepositoryFacade combines all quote repository interfaces.
type QuoteRepositoryFacade interface {
	QuoteReader
	QuoteWriter
}
