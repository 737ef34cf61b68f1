package pgsql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sendmoni/rates-backend/internal/apperrors"
	"github.com/sendmoni/rates-backend/internal/models"
)

// PgxQuoteRepository implements the quote repository ports using pgxpool.
// One row per directional pair; upserts overwrite rate, amounts and
// last_updated while created_at stays immutable.
type PgxQuoteRepository struct {
	BaseRepository
}

// NewPgxQuoteRepository creates a new PgxQuoteRepository.
func NewPgxQuoteRepository(db *pgxpool.Pool) *PgxQuoteRepository {
	return &PgxQuoteRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// UpsertQuote inserts or updates the quote for its pair. Concurrent upserts
// to the same pair resolve last-write-wins, which is acceptable because
// quotes are idempotent snapshots.
func (r *PgxQuoteRepository) UpsertQuote(ctx context.Context, quote models.Quote) error {
	source := strings.ToUpper(quote.SourceCurrency)
	destination := strings.ToUpper(quote.DestinationCurrency)
	if source == destination {
		return apperrors.Wrap(apperrors.ErrValidation, nil, "source and destination currencies cannot be the same")
	}

	_, err := r.Pool.Exec(ctx, `
		INSERT INTO exchange_rates (
			source_currency, destination_currency, rate, source_amount, destination_amount,
			last_updated, created_at
		) VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (source_currency, destination_currency) DO UPDATE SET
			rate = EXCLUDED.rate,
			source_amount = EXCLUDED.source_amount,
			destination_amount = EXCLUDED.destination_amount,
			last_updated = now()`,
		source, destination, quote.Rate, quote.SourceAmount, quote.DestinationAmount,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err, "failed to upsert quote")
	}
	return nil
}

// FindQuote retrieves the quote for one directional pair.
func (r *PgxQuoteRepository) FindQuote(ctx context.Context, sourceCurrency, destinationCurrency string) (*models.Quote, error) {
	query := `
		SELECT
			source_currency, destination_currency, rate, source_amount, destination_amount,
			last_updated, created_at
		FROM exchange_rates
		WHERE source_currency = $1 AND destination_currency = $2;
	`

	var quote models.Quote
	err := r.Pool.QueryRow(ctx, query,
		strings.ToUpper(sourceCurrency), strings.ToUpper(destinationCurrency),
	).Scan(
		&quote.SourceCurrency, &quote.DestinationCurrency, &quote.Rate,
		&quote.SourceAmount, &quote.DestinationAmount,
		&quote.LastUpdated, &quote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, nil,
				"no quote for pair "+sourceCurrency+" to "+destinationCurrency)
		}
		return nil, apperrors.Wrap(apperrors.ErrStore, err, "failed to find quote")
	}
	return &quote, nil
}

// CountQuotes returns the total number of stored quotes.
func (r *PgxQuoteRepository) CountQuotes(ctx context.Context) (int, error) {
	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exchange_rates`).Scan(&total); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStore, err, "failed to count quotes")
	}
	return total, nil
}

// FindQuotesUpdatedSince lists quotes refreshed at or after the cutoff,
// most recently updated first.
func (r *PgxQuoteRepository) FindQuotesUpdatedSince(ctx context.Context, cutoff time.Time) ([]models.Quote, error) {
	query := `
		SELECT
			source_currency, destination_currency, rate, source_amount, destination_amount,
			last_updated, created_at
		FROM exchange_rates
		WHERE last_updated >= $1
		ORDER BY last_updated DESC;
	`

	rows, err := r.Pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err, "failed to list recently updated quotes")
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var quote models.Quote
		err := rows.Scan(
			&quote.SourceCurrency, &quote.DestinationCurrency, &quote.Rate,
			&quote.SourceAmount, &quote.DestinationAmount,
			&quote.LastUpdated, &quote.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStore, err, "failed to scan quote")
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err, "error iterating quotes")
	}
	return quotes, nil
}
