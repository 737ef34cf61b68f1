package providers

import (
	"context"

	"github.com/sendmoni/rates-backend/internal/dto"
)

// QuoteFetcher fetches one pair's per-unit quote from the upstream
// provider. Implementations own retry/backoff and per-attempt timeouts and
// must validate the payload shape before returning it.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, sourceCurrency, destinationCurrency string) (*dto.ProviderQuoteResponse, error)
}

// ChangePublisher delivers invalidation signals to the change feed.
// Publishing is fire-and-forget by contract: implementations swallow
// delivery failures and callers never see a result. The pipeline must keep
// functioning with zero live subscribers.
type ChangePublisher interface {
	PublishRateUpdate(ctx context.Context, pairKey string, payload dto.ProviderQuoteResponse)
	PublishAllRatesUpdate(ctx context.Context)
}
