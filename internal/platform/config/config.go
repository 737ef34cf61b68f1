package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	RedisURL     string
	Port         string
	IsProduction bool

	// Upstream rate provider
	ProviderBaseURL   string
	ProviderSecretKey string
	ProviderTimeout   time.Duration

	// Freshness pipeline tuning
	StaleThreshold time.Duration
	CacheTTL       time.Duration
	PollInterval   time.Duration
	PollPairDelay  time.Duration

	// Currency pair matrix
	SourceCurrencies      []string
	DestinationCurrencies []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PROVIDER_BASE_URL", "https://api.flutterwave.com/v3")
	viper.SetDefault("PROVIDER_SECRET_KEY", "")
	viper.SetDefault("PROVIDER_TIMEOUT", "30s")
	viper.SetDefault("STALE_THRESHOLD", "10m")
	viper.SetDefault("CACHE_TTL", "120s")
	viper.SetDefault("POLL_INTERVAL", "10m")
	viper.SetDefault("POLL_PAIR_DELAY", "500ms")
	viper.SetDefault("SOURCE_CURRENCIES", "USD,CAD,GBP,EUR")
	viper.SetDefault("DESTINATION_CURRENCIES", "XOF,XAF,EGP,ETB,GHS,KES,MAD,NGN,ZAR,UGX,ZMW")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.ProviderBaseURL = viper.GetString("PROVIDER_BASE_URL")
	cfg.ProviderSecretKey = viper.GetString("PROVIDER_SECRET_KEY")
	if cfg.ProviderSecretKey == "" {
		log.Println("Warning: PROVIDER_SECRET_KEY environment variable not set. Upstream fetches will be rejected.")
	}

	cfg.ProviderTimeout = durationOrDefault("PROVIDER_TIMEOUT", 30*time.Second)
	cfg.StaleThreshold = durationOrDefault("STALE_THRESHOLD", 10*time.Minute)
	cfg.CacheTTL = durationOrDefault("CACHE_TTL", 120*time.Second)
	cfg.PollInterval = durationOrDefault("POLL_INTERVAL", 10*time.Minute)
	cfg.PollPairDelay = durationOrDefault("POLL_PAIR_DELAY", 500*time.Millisecond)

	cfg.SourceCurrencies = splitCurrencyList(viper.GetString("SOURCE_CURRENCIES"))
	cfg.DestinationCurrencies = splitCurrencyList(viper.GetString("DESTINATION_CURRENCIES"))

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitCurrencyList(raw string) []string {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		code := strings.ToUpper(strings.TrimSpace(p))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
