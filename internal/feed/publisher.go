package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sendmoni/rates-backend/internal/dto"
)

// Channel is the Redis pub/sub channel carrying change feed events between
// the poller process and the API server's websocket hub.
const Channel = "rates:updates"

// Publisher delivers change feed events over Redis pub/sub.
// Fire-and-forget by contract: every failure is swallowed after logging,
// and callers never see a result. Delivery is at most once.
type Publisher struct {
	client *goredis.Client
}

// NewPublisher creates a new Publisher on an existing client.
func NewPublisher(client *goredis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishRateUpdate announces a refreshed quote for one pair.
func (p *Publisher) PublishRateUpdate(ctx context.Context, pairKey string, payload dto.ProviderQuoteResponse) {
	p.publish(ctx, dto.FeedRateUpdate, dto.RateUpdateData{Key: pairKey, Rate: payload})
}

// PublishAllRatesUpdate announces that a full sweep has completed.
func (p *Publisher) PublishAllRatesUpdate(ctx context.Context) {
	p.publish(ctx, dto.FeedAllRatesUpdate, struct{}{})
}

func (p *Publisher) publish(ctx context.Context, eventType string, data any) {
	rawData, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to encode feed event", slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}
	raw, err := json.Marshal(dto.FeedEvent{Type: eventType, Data: rawData})
	if err != nil {
		slog.Warn("Failed to encode feed event", slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := p.client.Publish(ctx, Channel, raw).Err(); err != nil {
		// Subscribers are best-effort; the pipeline keeps going without them.
		slog.Warn("Failed to publish feed event", slog.String("type", eventType), slog.String("error", err.Error()))
	}
}
