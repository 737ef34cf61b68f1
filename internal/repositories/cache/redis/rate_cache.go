package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sendmoni/rates-backend/internal/apperrors"
	"github.com/sendmoni/rates-backend/internal/dto"
)

// RateCache is the Redis-backed hot cache of fully-shaped quote payloads.
// Entries expire via Redis TTLs; no explicit eviction is ever issued.
type RateCache struct {
	client *goredis.Client
}

// NewRateCache creates a new RateCache on an existing client.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{client: client}
}

// cacheKey derives the deterministic key for a pair.
func cacheKey(sourceCurrency, destinationCurrency string) string {
	return "fxrate:" + strings.ToUpper(sourceCurrency) + ":" + strings.ToUpper(destinationCurrency)
}

// GetPayload returns the cached payload for a pair, or (nil, nil) on a miss.
func (c *RateCache) GetPayload(ctx context.Context, sourceCurrency, destinationCurrency string) (*dto.ProviderQuoteResponse, error) {
	raw, err := c.client.Get(ctx, cacheKey(sourceCurrency, destinationCurrency)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrCache, err, "cache read failed")
	}

	var payload dto.ProviderQuoteResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		// A corrupt entry is indistinguishable from a miss for callers.
		return nil, apperrors.Wrap(apperrors.ErrCache, err, "cache entry is not a valid payload")
	}
	return &payload, nil
}

// SetPayload stores the payload under the pair key with the given TTL.
func (c *RateCache) SetPayload(ctx context.Context, sourceCurrency, destinationCurrency string, payload dto.ProviderQuoteResponse, ttl time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCache, err, "failed to encode payload")
	}
	if err := c.client.Set(ctx, cacheKey(sourceCurrency, destinationCurrency), raw, ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrCache, err, "cache write failed")
	}
	return nil
}
