package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sendmoni/rates-backend/internal/apperrors"
	portssvc "github.com/sendmoni/rates-backend/internal/core/ports/services"
	"github.com/sendmoni/rates-backend/internal/dto"
	"github.com/sendmoni/rates-backend/internal/feed"
	"github.com/sendmoni/rates-backend/internal/handlers"
	"github.com/sendmoni/rates-backend/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock RateSvcFacade ---
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) GetRate(ctx context.Context, sourceCurrency, destinationCurrency string) (*dto.ProviderQuoteResponse, error) {
	args := m.Called(ctx, sourceCurrency, destinationCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProviderQuoteResponse), args.Error(1)
}

func (m *MockRateService) GetAllRates(ctx context.Context, baseCurrency string) (map[string]dto.ProviderQuoteResponse, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]dto.ProviderQuoteResponse), args.Error(1)
}

func (m *MockRateService) GetRatesMatrix(ctx context.Context) (map[string]dto.ProviderQuoteResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]dto.ProviderQuoteResponse), args.Error(1)
}

// --- Mock RateAuditSvcFacade ---
type MockRateAuditService struct {
	mock.Mock
}

func (m *MockRateAuditService) CheckRecentChanges(ctx context.Context) (*dto.RateChangeReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RateChangeReport), args.Error(1)
}

// stubPinger fakes backing-store reachability for the health route.
type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

type RateHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	mockRate  *MockRateService
	mockAudit *MockRateAuditService
	pinger    *stubPinger
}

func (suite *RateHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockRate = new(MockRateService)
	suite.mockAudit = new(MockRateAuditService)
	suite.pinger = &stubPinger{}

	suite.router = gin.New()
	services := &portssvc.ServiceContainer{Rate: suite.mockRate, Audit: suite.mockAudit}
	handlers.RegisterRoutes(suite.router, &config.Config{}, services, feed.NewHub(nil), suite.pinger)
}

func (suite *RateHandlerTestSuite) serve(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RateHandlerTestSuite) decodeEnvelope(w *httptest.ResponseRecorder) dto.APIResponse {
	var envelope dto.APIResponse
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func (suite *RateHandlerTestSuite) TestGetRate_ReturnsRawProviderPayload() {
	payload := &dto.ProviderQuoteResponse{
		Status:  dto.StatusSuccess,
		Message: "Transfer amount fetched",
		Data: &dto.QuoteData{
			Rate:        1530.25,
			Source:      dto.QuoteSide{Currency: "USD", Amount: 1},
			Destination: dto.QuoteSide{Currency: "NGN", Amount: 1530.25},
		},
	}
	suite.mockRate.On("GetRate", mock.Anything, "USD", "NGN").Return(payload, nil).Once()

	w := suite.serve("/api/v1/rates?source_currency=USD&destination_currency=NGN")

	suite.Equal(http.StatusOK, w.Code)
	var got dto.ProviderQuoteResponse
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(*payload, got)
}

func (suite *RateHandlerTestSuite) TestGetRate_MissingParams() {
	w := suite.serve("/api/v1/rates?source_currency=USD")

	suite.Equal(http.StatusBadRequest, w.Code)
	envelope := suite.decodeEnvelope(w)
	suite.Equal("error", envelope.Status)
	suite.mockRate.AssertNotCalled(suite.T(), "GetRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RateHandlerTestSuite) TestGetRate_MalformedCode() {
	w := suite.serve("/api/v1/rates?source_currency=USDX&destination_currency=NGN")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRate.AssertNotCalled(suite.T(), "GetRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RateHandlerTestSuite) TestGetRate_NotFound() {
	suite.mockRate.On("GetRate", mock.Anything, "USD", "NGN").
		Return(nil, apperrors.Wrap(apperrors.ErrNotFound, nil, "no quote")).Once()

	w := suite.serve("/api/v1/rates?source_currency=USD&destination_currency=NGN")

	suite.Equal(http.StatusNotFound, w.Code)
	envelope := suite.decodeEnvelope(w)
	suite.Equal("Rate not found", envelope.Message)
}

func (suite *RateHandlerTestSuite) TestGetRate_UpstreamFailure() {
	suite.mockRate.On("GetRate", mock.Anything, "USD", "NGN").
		Return(nil, apperrors.Wrap(apperrors.ErrUpstream, nil, "provider down")).Once()

	w := suite.serve("/api/v1/rates?source_currency=USD&destination_currency=NGN")

	suite.Equal(http.StatusBadGateway, w.Code)
	envelope := suite.decodeEnvelope(w)
	suite.Equal("Failed to fetch rates", envelope.Message)
}

func (suite *RateHandlerTestSuite) TestGetRate_UnclassifiedFailure() {
	suite.mockRate.On("GetRate", mock.Anything, "USD", "NGN").
		Return(nil, apperrors.Wrap(apperrors.ErrStore, nil, "db down")).Once()

	w := suite.serve("/api/v1/rates?source_currency=USD&destination_currency=NGN")

	suite.Equal(http.StatusInternalServerError, w.Code)
}

func (suite *RateHandlerTestSuite) TestGetAllRates_DefaultsBaseToUSD() {
	results := map[string]dto.ProviderQuoteResponse{
		"USD_NGN": {Status: dto.StatusSuccess, Data: &dto.QuoteData{Rate: 1530.25}},
	}
	suite.mockRate.On("GetAllRates", mock.Anything, "USD").Return(results, nil).Once()

	w := suite.serve("/api/v1/rates/all")

	suite.Equal(http.StatusOK, w.Code)
	envelope := suite.decodeEnvelope(w)
	suite.Equal("success", envelope.Status)
	suite.Equal("Rates fetched", envelope.Message)
	suite.mockRate.AssertExpectations(suite.T())
}

func (suite *RateHandlerTestSuite) TestGetAllRates_ExplicitBase() {
	suite.mockRate.On("GetAllRates", mock.Anything, "EUR").
		Return(map[string]dto.ProviderQuoteResponse{}, nil).Once()

	w := suite.serve("/api/v1/rates/all?base_currency=EUR")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockRate.AssertExpectations(suite.T())
}

func (suite *RateHandlerTestSuite) TestGetAllRates_StoreFailure() {
	suite.mockRate.On("GetAllRates", mock.Anything, "USD").
		Return(nil, apperrors.Wrap(apperrors.ErrStore, nil, "db down")).Once()

	w := suite.serve("/api/v1/rates/all")

	suite.Equal(http.StatusInternalServerError, w.Code)
	envelope := suite.decodeEnvelope(w)
	suite.Equal("Failed to fetch rates", envelope.Message)
}

func (suite *RateHandlerTestSuite) TestCheckChanges_ReturnsReport() {
	report := &dto.RateChangeReport{
		HasChanges:        true,
		TotalRates:        44,
		UpdatedInLastDays: 3,
		CheckPeriodDays:   5,
	}
	suite.mockAudit.On("CheckRecentChanges", mock.Anything).Return(report, nil).Once()

	w := suite.serve("/api/v1/rates/check-changes")

	suite.Equal(http.StatusOK, w.Code)
	envelope := suite.decodeEnvelope(w)
	suite.Equal("Rate change check completed", envelope.Message)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(suite.T(), err)
	var got dto.RateChangeReport
	require.NoError(suite.T(), json.Unmarshal(raw, &got))
	assert.Equal(suite.T(), *report, got)
}

func (suite *RateHandlerTestSuite) TestCheckChanges_Failure() {
	suite.mockAudit.On("CheckRecentChanges", mock.Anything).
		Return(nil, apperrors.Wrap(apperrors.ErrStore, nil, "db down")).Once()

	w := suite.serve("/api/v1/rates/check-changes")

	suite.Equal(http.StatusInternalServerError, w.Code)
}

func (suite *RateHandlerTestSuite) TestHealthRoute() {
	w := suite.serve("/health")

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *RateHandlerTestSuite) TestHealthRoute_DatabaseUnreachable() {
	suite.pinger.err = apperrors.Wrap(apperrors.ErrStore, nil, "db down")

	w := suite.serve("/health")

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func TestRateHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(RateHandlerTestSuite))
}
