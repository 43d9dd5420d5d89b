package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string
	CartTTL     time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret string
	TokenTTL  time.Duration

	DeliveryFee       decimal.Decimal
	DeliveryETA       time.Duration
	LowStockThreshold int
	DriverCommission  decimal.Decimal

	// SeedFile overrides the embedded fixtures when set.
	SeedFile string
	LogLevel string
}

// Load reads configuration from environment variables. Unset variables fall
// back to defaults; malformed ones are reported.
func Load() (Config, error) {
	cfg := Config{
		Addr:              getenv("GROCERY_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaTopic:        getenv("KAFKA_TOPIC", "order-events"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SeedFile:          os.Getenv("SEED_FILE"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LowStockThreshold: 5,
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.CartTTL, err = durationEnv("CART_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 72*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryETA, err = durationEnv("DELIVERY_ETA", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryFee, err = decimalEnv("DELIVERY_FEE", decimal.RequireFromString("2.50")); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryFee.IsNegative() {
		return Config{}, fmt.Errorf("DELIVERY_FEE must not be negative")
	}
	if cfg.DriverCommission, err = decimalEnv("DRIVER_COMMISSION", decimal.RequireFromString("0.15")); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid LOW_STOCK_THRESHOLD %q", v)
		}
		cfg.LowStockThreshold = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func decimalEnv(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
