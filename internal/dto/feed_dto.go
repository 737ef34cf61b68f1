package dto

import "encoding/json"

// Feed event kinds pushed to subscribers. rate_update and all_rates_update
// are invalidation signals published by the poller; rate and all_rates are
// direct replies to client requests.
const (
	FeedRateUpdate     = "rate_update"
	FeedAllRatesUpdate = "all_rates_update"
	FeedRate           = "rate"
	FeedAllRates       = "all_rates"
)

// FeedEvent is the envelope for every message pushed over the change feed.
type FeedEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RateUpdateData is the payload of a per-pair rate_update event.
type RateUpdateData struct {
	Key  string                `json:"key"`
	Rate ProviderQuoteResponse `json:"rate"`
}

// ClientMessage is what a subscriber may send over the websocket.
// Anything that does not parse into it is ignored.
type ClientMessage struct {
	Type                string `json:"type"`
	SourceCurrency      string `json:"source_currency"`
	DestinationCurrency string `json:"destination_currency"`
}
