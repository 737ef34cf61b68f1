package handlers

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	portssvc "github.com/sendmoni/rates-backend/internal/core/ports/services"
	"github.com/sendmoni/rates-backend/internal/feed"
	"github.com/sendmoni/rates-backend/internal/platform/config"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Pinger reports backing-store reachability for the health route.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	hub *feed.Hub,
	db Pinger,
) {
	registerCurrencyValidator()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.String(http.StatusServiceUnavailable, "database unreachable")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	})

	registerHomeRoutes(r)

	// Query API
	v1 := r.Group("/api/v1")
	registerRateRoutes(v1, services)

	// Subscription channel
	wsHandler := newWSHandler(hub, services.Rate)
	r.GET("/ws/rates", wsHandler.subscribe)
}

// registerCurrencyValidator installs the "currency" binding rule
// (3-letter alphabetic code) on gin's validator engine.
func registerCurrencyValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return currencyCodeRe.MatchString(fl.Field().String())
		})
	}
}
