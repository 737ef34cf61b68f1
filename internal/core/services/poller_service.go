package services

import (
	"context"
	"log/slog"
	"time"

	portsprov "github.com/sendmoni/rates-backend/internal/core/ports/providers"
	portsrepo "github.com/sendmoni/rates-backend/internal/core/ports/repositories"
	"github.com/sendmoni/rates-backend/internal/models"
)

// SweepResult aggregates one full pass over the currency-pair matrix.
type SweepResult struct {
	SuccessCount int
	ErrorCount   int
}

// PollerService drives periodic, unconditional refresh of every configured
// pair, independent of request traffic. It always refetches (no staleness
// check), persists and caches each success, and publishes change feed
// events. Per-pair failures are counted and logged but never abort a sweep.
// The poller is crash-only: sweep progress is not checkpointed and a
// restart begins a fresh sweep from the first pair.
type PollerService struct {
	store     portsrepo.QuoteRepositoryFacade
	cache     portsrepo.RateCache
	fetcher   portsprov.QuoteFetcher
	publisher portsprov.ChangePublisher
	pairs     models.PairSet

	interval  time.Duration
	pairDelay time.Duration
}

// NewPollerService creates a new PollerService. Cached entries live for
// twice the sweep interval so a single missed sweep does not empty the hot
// cache.
func NewPollerService(
	store portsrepo.QuoteRepositoryFacade,
	cache portsrepo.RateCache,
	fetcher portsprov.QuoteFetcher,
	publisher portsprov.ChangePublisher,
	pairs models.PairSet,
	interval, pairDelay time.Duration,
) *PollerService {
	return &PollerService{
		store:     store,
		cache:     cache,
		fetcher:   fetcher,
		publisher: publisher,
		pairs:     pairs,
		interval:  interval,
		pairDelay: pairDelay,
	}
}

// Run executes sweeps until ctx is cancelled. With once set it returns
// after a single sweep, which supports externally-scheduled invocation.
func (p *PollerService) Run(ctx context.Context, once bool) error {
	pairs := p.pairs.Pairs()
	slog.Info("Starting rate poller",
		slog.Int("total_pairs", len(pairs)),
		slog.Duration("interval", p.interval),
	)

	for {
		result := p.RunSweep(ctx)
		slog.Info("Sweep completed",
			slog.Int("success_count", result.SuccessCount),
			slog.Int("error_count", result.ErrorCount),
		)

		if once {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

// RunSweep walks the full matrix once, source-major and destination-minor.
// After a sweep with at least one success it publishes a single batch
// completion signal.
func (p *PollerService) RunSweep(ctx context.Context) SweepResult {
	var result SweepResult
	for _, pair := range p.pairs.Pairs() {
		if ctx.Err() != nil {
			return result
		}

		if err := p.refreshPair(ctx, pair); err != nil {
			result.ErrorCount++
			slog.Warn("Pair refresh failed",
				slog.String("pair", pair.Key()),
				slog.String("error", err.Error()),
			)
		} else {
			result.SuccessCount++
			slog.Debug("Pair refreshed", slog.String("pair", pair.Key()))
		}

		// Throttle upstream call rate.
		if p.pairDelay > 0 {
			select {
			case <-ctx.Done():
				return result
			case <-time.After(p.pairDelay):
			}
		}
	}

	if result.SuccessCount > 0 {
		p.publisher.PublishAllRatesUpdate(ctx)
	}
	return result
}

// refreshPair refetches one pair unconditionally, writes it through and
// publishes its rate_update event.
func (p *PollerService) refreshPair(ctx context.Context, pair models.Pair) error {
	payload, err := p.fetcher.FetchQuote(ctx, pair.Source, pair.Destination)
	if err != nil {
		return err
	}

	if err := p.store.UpsertQuote(ctx, payload.ToQuote(pair.Source, pair.Destination)); err != nil {
		return err
	}

	if err := p.cache.SetPayload(ctx, pair.Source, pair.Destination, *payload, 2*p.interval); err != nil {
		// The store write already succeeded; a cold cache only costs latency.
		slog.Warn("Cache write failed during sweep",
			slog.String("pair", pair.Key()),
			slog.String("error", err.Error()),
		)
	}

	p.publisher.PublishRateUpdate(ctx, pair.Key(), *payload)
	return nil
}
