package services

import (
	"context"

	"github.com/sendmoni/rates-backend/internal/dto"
)

// RateSvcFacade is the request-path contract: the three-tier lookup plus
// the bulk queries used by the HTTP API and the websocket snapshot.
type RateSvcFacade interface {
	// GetRate resolves one directional pair via cache, store and upstream.
	GetRate(ctx context.Context, sourceCurrency, destinationCurrency string) (*dto.ProviderQuoteResponse, error)

	// GetAllRates returns every stored pair for a base currency, keyed
	// "<BASE>_<DST>". Pairs with no record are silently omitted.
	GetAllRates(ctx context.Context, baseCurrency string) (map[string]dto.ProviderQuoteResponse, error)

	// GetRatesMatrix returns the full configured source x destination
	// snapshot from the store, keyed "<SRC>_<DST>".
	GetRatesMatrix(ctx context.Context) (map[string]dto.ProviderQuoteResponse, error)
}

// RateAuditSvcFacade answers the point-in-time recent-changes audit.
type RateAuditSvcFacade interface {
	CheckRecentChanges(ctx context.Context) (*dto.RateChangeReport, error)
}

// ServiceContainer holds instances of all the application services and is
// the entry point handlers use to reach them.
type ServiceContainer struct {
	Rate  RateSvcFacade
	Audit RateAuditSvcFacade
}
