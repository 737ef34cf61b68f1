package repositories

import (
	"context"
	"time"

	"github.com/sendmoni/rates-backend/internal/dto"
)

// RateCache is the short-TTL hot cache of fully-shaped quote payloads.
// It is never authoritative: a miss means "not cached right now", not
// "rate does not exist".
type RateCache interface {
	// GetPayload returns the cached payload for a pair, or (nil, nil) on a miss.
	GetPayload(ctx context.Context, sourceCurrency, destinationCurrency string) (*dto.ProviderQuoteResponse, error)

	// SetPayload stores the payload under the pair key. Entries expire
	// automatically after ttl.
	SetPayload(ctx context.Context, sourceCurrency, destinationCurrency string, payload dto.ProviderQuoteResponse, ttl time.Duration) error
}
