package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sendmoni/rates-backend/internal/apperrors"
	portssvc "github.com/sendmoni/rates-backend/internal/core/ports/services"
	"github.com/sendmoni/rates-backend/internal/dto"
	"github.com/sendmoni/rates-backend/internal/middleware"
)

// rateHandler handles HTTP requests related to exchange rates.
type rateHandler struct {
	rateService  portssvc.RateSvcFacade
	auditService portssvc.RateAuditSvcFacade
}

// newRateHandler creates a new rateHandler.
func newRateHandler(rs portssvc.RateSvcFacade, as portssvc.RateAuditSvcFacade) *rateHandler {
	return &rateHandler{
		rateService:  rs,
		auditService: as,
	}
}

// registerRateRoutes registers routes related to exchange rates.
func registerRateRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newRateHandler(services.Rate, services.Audit)

	rates := rg.Group("/rates")
	{
		rates.GET("", h.getRate)
		rates.GET("/all", h.getAllRates)
		rates.GET("/check-changes", h.checkChanges)
	}
}

// getRate godoc
// @Summary Get an exchange rate
// @Description Resolves the latest quote for a directional currency pair
// @Tags rates
// @Produce json
// @Param   source_currency query string true "Source Currency Code (3 letters)"
// @Param   destination_currency query string true "Destination Currency Code (3 letters)"
// @Success 200 {object} dto.ProviderQuoteResponse
// @Failure 400 {object} dto.APIResponse "Missing or malformed currency codes"
// @Failure 404 {object} dto.APIResponse "No quote exists for the pair"
// @Failure 502 {object} dto.APIResponse "Upstream provider failed"
// @Router /rates [get]
func (h *rateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.GetRateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.APIResponse{
			Status:  "error",
			Message: "source_currency and destination_currency are required",
			Data:    nil,
		})
		return
	}

	payload, err := h.rateService.GetRate(c.Request.Context(), req.SourceCurrency, req.DestinationCurrency)
	if err != nil {
		h.renderRateError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// getAllRates godoc
// @Summary Get all exchange rates for a base currency
// @Description Returns every stored pair for the base currency; missing pairs are omitted
// @Tags rates
// @Produce json
// @Param   base_currency query string false "Base Currency Code (default USD)"
// @Success 200 {object} dto.APIResponse
// @Router /rates/all [get]
func (h *rateHandler) getAllRates(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	base := c.DefaultQuery("base_currency", "USD")
	results, err := h.rateService.GetAllRates(c.Request.Context(), base)
	if err != nil {
		logger.Error("Failed to list rates", slog.String("base", base), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Status:  "error",
			Message: "Failed to fetch rates",
			Data:    nil,
		})
		return
	}

	c.JSON(http.StatusOK, dto.APIResponse{
		Status:  "success",
		Message: "Rates fetched",
		Data:    results,
	})
}

// checkChanges godoc
// @Summary Check for recent rate changes
// @Description Reports which quotes were refreshed in the last 5 days
// @Tags rates
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router /rates/check-changes [get]
func (h *rateHandler) checkChanges(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	report, err := h.auditService.CheckRecentChanges(c.Request.Context())
	if err != nil {
		logger.Error("Rate change check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Status:  "error",
			Message: "Rate change check failed",
			Data:    nil,
		})
		return
	}

	c.JSON(http.StatusOK, dto.APIResponse{
		Status:  "success",
		Message: "Rate change check completed",
		Data:    report,
	})
}

func (h *rateHandler) renderRateError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.APIResponse{Status: "error", Message: err.Error(), Data: nil})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.APIResponse{Status: "error", Message: "Rate not found", Data: nil})
	case errors.Is(err, apperrors.ErrUpstream):
		logger.Error("Upstream fetch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, dto.APIResponse{Status: "error", Message: "Failed to fetch rates", Data: nil})
	default:
		logger.Error("Failed to resolve rate", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.APIResponse{Status: "error", Message: "Failed to resolve rate", Data: nil})
	}
}
