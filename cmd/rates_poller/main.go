package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sendmoni/rates-backend/internal/core/services"
	"github.com/sendmoni/rates-backend/internal/feed"
	"github.com/sendmoni/rates-backend/internal/models"
	"github.com/sendmoni/rates-backend/internal/platform/config"
	"github.com/sendmoni/rates-backend/internal/providers/flutterwave"
	rediscache "github.com/sendmoni/rates-backend/internal/repositories/cache/redis"
	"github.com/sendmoni/rates-backend/internal/repositories/database/pgsql"
	"github.com/sendmoni/rates-backend/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var (
		interval = flag.Duration("interval", 0, "polling interval (defaults to POLL_INTERVAL)")
		once     = flag.Bool("once", false, "run one sweep and exit (for cron jobs)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *interval > 0 {
		cfg.PollInterval = *interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	poller := services.NewPollerService(
		pgsql.NewPgxQuoteRepository(dbPool),
		rediscache.NewRateCache(redisClient),
		flutterwave.NewClient(cfg.ProviderBaseURL, cfg.ProviderSecretKey, cfg.ProviderTimeout),
		feed.NewPublisher(redisClient),
		models.NewPairSet(cfg.SourceCurrencies, cfg.DestinationCurrencies),
		cfg.PollInterval,
		cfg.PollPairDelay,
	)

	start := time.Now()
	if err := poller.Run(ctx, *once); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Poller exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Poller stopped.", slog.Duration("uptime", time.Since(start)))
}
