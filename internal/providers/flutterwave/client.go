package flutterwave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sendmoni/rates-backend/internal/apperrors"
	"github.com/sendmoni/rates-backend/internal/dto"
)

const (
	maxAttempts = 3
	// Exponential backoff base: 1s, 2s between attempts.
	backoffBase = 1 * time.Second
)

// Client fetches per-unit quotes from the Flutterwave transfers/rates
// endpoint. amount is fixed at 1 unit of source currency so the returned
// quote is the per-unit rate. The client owns retry and backoff: network
// errors and 429/500/502/503/504 are retried, everything else is terminal.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new Client. timeout bounds each individual attempt.
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    backoffBase,
	}
}

// FetchQuote fetches one pair's quote, retrying idempotent failures with
// exponential backoff, and validates the payload shape before returning it.
func (c *Client) FetchQuote(ctx context.Context, sourceCurrency, destinationCurrency string) (*dto.ProviderQuoteResponse, error) {
	source := strings.ToUpper(sourceCurrency)
	destination := strings.ToUpper(destinationCurrency)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<uint(attempt-1))
			slog.Debug("Retrying provider fetch",
				slog.String("source", source),
				slog.String("destination", destination),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, apperrors.Wrap(apperrors.ErrUpstream, ctx.Err(), "fetch cancelled")
			case <-time.After(delay):
			}
		}

		payload, retryable, err := c.doFetch(ctx, source, destination)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	// A provider rejection of the pair itself stays a not-found, not an
	// upstream failure.
	if errors.Is(lastErr, apperrors.ErrNotFound) {
		return nil, lastErr
	}
	return nil, apperrors.Wrap(apperrors.ErrUpstream, lastErr,
		fmt.Sprintf("failed to fetch quote %s->%s", source, destination))
}

// doFetch performs a single attempt. The second return value reports
// whether the failure is safe to retry.
func (c *Client) doFetch(ctx context.Context, source, destination string) (*dto.ProviderQuoteResponse, bool, error) {
	endpoint := c.baseURL + "/transfers/rates"
	params := url.Values{}
	params.Set("amount", "1")
	params.Set("source_currency", source)
	params.Set("destination_currency", destination)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors are retryable for a GET.
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, retryableStatus(resp.StatusCode), fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	var payload dto.ProviderQuoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("malformed provider response: %w", err)
	}
	if err := payload.Validate(); err != nil {
		return nil, false, err
	}
	return &payload, false, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
