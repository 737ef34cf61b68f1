package services

import (
	"time"

	portsprov "github.com/sendmoni/rates-backend/internal/core/ports/providers"
	portsrepo "github.com/sendmoni/rates-backend/internal/core/ports/repositories"
	portssvc "github.com/sendmoni/rates-backend/internal/core/ports/services"
	"github.com/sendmoni/rates-backend/internal/models"
)

// NewServiceContainer wires the request-path services behind their facades.
func NewServiceContainer(
	store portsrepo.QuoteRepositoryFacade,
	cache portsrepo.RateCache,
	fetcher portsprov.QuoteFetcher,
	pairs models.PairSet,
	staleThreshold, cacheTTL time.Duration,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Rate:  NewRateService(store, cache, fetcher, pairs, staleThreshold, cacheTTL),
		Audit: NewRateAuditService(store),
	}
}
