package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/sendmoni/rates-backend/internal/apperrors"
	"github.com/sendmoni/rates-backend/internal/core/services"
	"github.com/sendmoni/rates-backend/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RateAuditServiceTestSuite struct {
	suite.Suite
	mockStore *MockQuoteRepository
	service   *services.RateAuditService
}

func (suite *RateAuditServiceTestSuite) SetupTest() {
	suite.mockStore = new(MockQuoteRepository)
	suite.service = services.NewRateAuditService(suite.mockStore)
}

func (suite *RateAuditServiceTestSuite) TestCheckRecentChanges_ReportsUpdatedQuotes() {
	ctx := context.Background()
	recent := makeQuote("USD", "NGN", 1530.25, time.Now().Add(-26*time.Hour))

	suite.mockStore.On("CountQuotes", ctx).Return(44, nil).Once()
	suite.mockStore.On("FindQuotesUpdatedSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]models.Quote{*recent}, nil).Once()

	report, err := suite.service.CheckRecentChanges(ctx)

	suite.Require().NoError(err)
	suite.True(report.HasChanges)
	suite.Equal(44, report.TotalRates)
	suite.Equal(1, report.UpdatedInLastDays)
	suite.Equal(5, report.CheckPeriodDays)
	suite.Require().Len(report.ChangedRates, 1)

	changed := report.ChangedRates[0]
	suite.Equal("USD", changed.SourceCurrency)
	suite.Equal("NGN", changed.DestinationCurrency)
	suite.Equal(1530.25, changed.Rate)
	suite.Equal(1, changed.DaysSinceUpdate)
	suite.InDelta(26.0, changed.HoursSinceUpdate, 0.1)
}

func (suite *RateAuditServiceTestSuite) TestCheckRecentChanges_EmptyWindow() {
	ctx := context.Background()

	suite.mockStore.On("CountQuotes", ctx).Return(44, nil).Once()
	suite.mockStore.On("FindQuotesUpdatedSince", ctx, mock.AnythingOfType("time.Time")).
		Return([]models.Quote{}, nil).Once()

	report, err := suite.service.CheckRecentChanges(ctx)

	suite.Require().NoError(err)
	suite.False(report.HasChanges)
	suite.Equal(0, report.UpdatedInLastDays)
	suite.Empty(report.ChangedRates)
}

func (suite *RateAuditServiceTestSuite) TestCheckRecentChanges_CutoffIsFiveDaysBack() {
	ctx := context.Background()
	var seenCutoff time.Time

	suite.mockStore.On("CountQuotes", ctx).Return(0, nil).Once()
	suite.mockStore.On("FindQuotesUpdatedSince", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		seenCutoff = cutoff
		return true
	})).Return([]models.Quote{}, nil).Once()

	_, err := suite.service.CheckRecentChanges(ctx)

	suite.Require().NoError(err)
	expected := time.Now().AddDate(0, 0, -5)
	suite.WithinDuration(expected, seenCutoff, time.Minute)
}

func (suite *RateAuditServiceTestSuite) TestCheckRecentChanges_StoreFailurePropagates() {
	ctx := context.Background()

	suite.mockStore.On("CountQuotes", ctx).
		Return(0, apperrors.Wrap(apperrors.ErrStore, nil, "db down")).Once()

	report, err := suite.service.CheckRecentChanges(ctx)

	suite.Error(err)
	suite.Nil(report)
	suite.mockStore.AssertNotCalled(suite.T(), "FindQuotesUpdatedSince", mock.Anything, mock.Anything)
}

func TestRateAuditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateAuditServiceTestSuite))
}
