package services

import (
	"context"
	"fmt"
	"math"
	"time"

	portsrepo "github.com/sendmoni/rates-backend/internal/core/ports/repositories"
	"github.com/sendmoni/rates-backend/internal/dto"
)

// checkPeriodDays is the audit window for the recent-changes report.
const checkPeriodDays = 5

// RateAuditService answers the point-in-time "changed recently" audit over
// the quote store. Not part of the hot path.
type RateAuditService struct {
	store portsrepo.QuoteReader
	now   func() time.Time
}

// NewRateAuditService creates a new RateAuditService.
func NewRateAuditService(store portsrepo.QuoteReader) *RateAuditService {
	return &RateAuditService{store: store, now: time.Now}
}

// CheckRecentChanges reports which quotes were refreshed inside the audit
// window and how long ago.
func (s *RateAuditService) CheckRecentChanges(ctx context.Context) (*dto.RateChangeReport, error) {
	now := s.now()
	cutoff := now.AddDate(0, 0, -checkPeriodDays)

	total, err := s.store.CountQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	updated, err := s.store.FindQuotesUpdatedSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list recently updated quotes: %w", err)
	}

	changed := make([]dto.ChangedRate, 0, len(updated))
	for _, quote := range updated {
		age := quote.Age(now)
		rate, _ := quote.Rate.Float64()
		changed = append(changed, dto.ChangedRate{
			SourceCurrency:      quote.SourceCurrency,
			DestinationCurrency: quote.DestinationCurrency,
			Rate:                rate,
			LastUpdated:         quote.LastUpdated.Format(time.RFC3339),
			DaysSinceUpdate:     int(age.Hours() / 24),
			HoursSinceUpdate:    math.Round(age.Hours()*100) / 100,
		})
	}

	return &dto.RateChangeReport{
		HasChanges:        len(updated) > 0,
		TotalRates:        total,
		UpdatedInLastDays: len(updated),
		CheckPeriodDays:   checkPeriodDays,
		CheckDate:         cutoff.Format(time.RFC3339),
		ChangedRates:      changed,
	}, nil
}
