package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sendmoni/rates-backend/internal/apperrors"
	portsprov "github.com/sendmoni/rates-backend/internal/core/ports/providers"
	portsrepo "github.com/sendmoni/rates-backend/internal/core/ports/repositories"
	"github.com/sendmoni/rates-backend/internal/dto"
	"github.com/sendmoni/rates-backend/internal/models"
)

// RateService resolves quotes through the three-tier lookup:
// hot cache, then store, then upstream provider. Every successful upstream
// fetch is written through to both the store and the cache before the
// caller sees a result. Cache and store write failures on the read path are
// logged and swallowed; the cache is strictly an optimization layer and the
// store stays authoritative.
//
// Concurrent stale refreshes for the same pair are allowed to race: both
// converge to the same upsert, and last-write-wins is acceptable because
// quotes are idempotent snapshots.
type RateService struct {
	store          portsrepo.QuoteRepositoryFacade
	cache          portsrepo.RateCache
	fetcher        portsprov.QuoteFetcher
	pairs          models.PairSet
	staleThreshold time.Duration
	cacheTTL       time.Duration
	now            func() time.Time
}

// NewRateService creates a new RateService.
func NewRateService(
	store portsrepo.QuoteRepositoryFacade,
	cache portsrepo.RateCache,
	fetcher portsprov.QuoteFetcher,
	pairs models.PairSet,
	staleThreshold, cacheTTL time.Duration,
) *RateService {
	return &RateService{
		store:          store,
		cache:          cache,
		fetcher:        fetcher,
		pairs:          pairs,
		staleThreshold: staleThreshold,
		cacheTTL:       cacheTTL,
		now:            time.Now,
	}
}

// GetRate resolves one directional pair. Strict order, short-circuiting on
// success: cache hit (no freshness check, the TTL is the staleness bound),
// fresh store hit, stale store hit with one synchronous refresh attempt and
// a guaranteed stale fallback, and finally a cold upstream fetch.
func (s *RateService) GetRate(ctx context.Context, sourceCurrency, destinationCurrency string) (*dto.ProviderQuoteResponse, error) {
	source, destination, err := normalizePair(sourceCurrency, destinationCurrency)
	if err != nil {
		return nil, err
	}

	if cached := s.cacheGet(ctx, source, destination); cached != nil {
		return cached, nil
	}

	quote, err := s.store.FindQuote(ctx, source, destination)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if quote != nil {
		age := quote.Age(s.now())
		if age > s.staleThreshold {
			if fresh := s.tryRefresh(ctx, source, destination, age); fresh != nil {
				return fresh, nil
			}
			// Refresh failed; the stale value is the guaranteed fallback.
		}
		shaped := dto.FromQuote(*quote)
		s.cacheSet(ctx, source, destination, shaped)
		return &shaped, nil
	}

	// Nothing stored anywhere, so a failed fetch has no fallback.
	fresh, err := s.fetcher.FetchQuote(ctx, source, destination)
	if err != nil {
		return nil, fmt.Errorf("cold fetch for %s->%s failed: %w", source, destination, err)
	}
	s.persist(ctx, source, destination, *fresh)
	s.cacheSet(ctx, source, destination, *fresh)
	return fresh, nil
}

// GetAllRates returns every stored pair for the base currency. Pairs with
// no record are omitted, never reported as errors.
func (s *RateService) GetAllRates(ctx context.Context, baseCurrency string) (map[string]dto.ProviderQuoteResponse, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if base == "" {
		base = "USD"
	}

	results := make(map[string]dto.ProviderQuoteResponse)
	for _, destination := range s.pairs.DestinationsFor(base) {
		if cached := s.cacheGet(ctx, base, destination); cached != nil {
			results[models.PairKey(base, destination)] = *cached
			continue
		}

		quote, err := s.store.FindQuote(ctx, base, destination)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			slog.Warn("Rate not found in store", slog.String("source", base), slog.String("destination", destination))
			continue
		}

		shaped := dto.FromQuote(*quote)
		results[quote.PairKey()] = shaped
		s.cacheSet(ctx, base, destination, shaped)
	}
	return results, nil
}

// GetRatesMatrix walks the full configured pair matrix against the store.
// Used for the websocket snapshot pushed on connect.
func (s *RateService) GetRatesMatrix(ctx context.Context) (map[string]dto.ProviderQuoteResponse, error) {
	results := make(map[string]dto.ProviderQuoteResponse)
	for _, pair := range s.pairs.Pairs() {
		quote, err := s.store.FindQuote(ctx, pair.Source, pair.Destination)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		results[pair.Key()] = dto.FromQuote(*quote)
	}
	return results, nil
}

// tryRefresh performs the synchronous stale refresh. It returns nil when
// the upstream call fails for any reason; the caller then serves the stale
// store value instead of failing the request.
func (s *RateService) tryRefresh(ctx context.Context, source, destination string, age time.Duration) *dto.ProviderQuoteResponse {
	fresh, err := s.fetcher.FetchQuote(ctx, source, destination)
	if err != nil {
		slog.Warn("Failed to refresh stale rate, falling back to stored value",
			slog.String("source", source),
			slog.String("destination", destination),
			slog.Duration("age", age),
			slog.String("error", err.Error()),
		)
		return nil
	}
	s.persist(ctx, source, destination, *fresh)
	s.cacheSet(ctx, source, destination, *fresh)
	return fresh
}

// persist upserts a validated provider payload. Store write failures on the
// resolve path are soft: the caller already holds a good payload.
func (s *RateService) persist(ctx context.Context, source, destination string, payload dto.ProviderQuoteResponse) {
	if err := s.store.UpsertQuote(ctx, payload.ToQuote(source, destination)); err != nil {
		slog.Error("Failed to persist quote",
			slog.String("source", source),
			slog.String("destination", destination),
			slog.String("error", err.Error()),
		)
	}
}

func (s *RateService) cacheGet(ctx context.Context, source, destination string) *dto.ProviderQuoteResponse {
	payload, err := s.cache.GetPayload(ctx, source, destination)
	if err != nil {
		slog.Warn("Cache read failed",
			slog.String("source", source),
			slog.String("destination", destination),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return payload
}

func (s *RateService) cacheSet(ctx context.Context, source, destination string, payload dto.ProviderQuoteResponse) {
	if err := s.cache.SetPayload(ctx, source, destination, payload, s.cacheTTL); err != nil {
		slog.Warn("Cache write failed",
			slog.String("source", source),
			slog.String("destination", destination),
			slog.String("error", err.Error()),
		)
	}
}

// normalizePair uppercases both codes and validates the 3-letter shape.
func normalizePair(sourceCurrency, destinationCurrency string) (string, string, error) {
	source := strings.ToUpper(strings.TrimSpace(sourceCurrency))
	destination := strings.ToUpper(strings.TrimSpace(destinationCurrency))
	if source == "" || destination == "" {
		return "", "", fmt.Errorf("%w: source_currency and destination_currency are required", apperrors.ErrValidation)
	}
	if len(source) != 3 || len(destination) != 3 {
		return "", "", fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	return source, destination, nil
}
