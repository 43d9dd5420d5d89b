package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/grocery-delivery-backend/internal/config"
	"github.com/wichananm65/grocery-delivery-backend/internal/database"
	"github.com/wichananm65/grocery-delivery-backend/internal/events"
	"github.com/wichananm65/grocery-delivery-backend/internal/seed"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("load config", "error", err)
	}
	setLogLevel(cfg.LogLevel)
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	decimal.MarshalJSONWithoutQuotes = true

	data, err := seed.Load(cfg.SeedFile)
	if err != nil {
		log.Fatalw("load seed fixtures", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := make(map[string]healthCheck)
	st := inMemoryStores(data.Drivers)
	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalw("connect database", "error", err)
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			log.Fatalw("migrate database", "error", err)
		}
		st = postgresStores(db, data.Drivers)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL is not set, using in-memory stores")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalw("connect redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		st = st.withRedisCarts(rdb, cfg.CartTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	if err := seedStores(ctx, st, data); err != nil {
		log.Fatalw("seed stores", "error", err)
	}

	var publisher events.Publisher = events.NewLogPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		log.Infow("publishing order events to kafka", "topic", cfg.KafkaTopic, "brokers", strings.Join(cfg.KafkaBrokers, ","))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnw("close event publisher", "error", err)
		}
	}()

	app := newApp(cfg, st, publisher, checks)

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Errorw("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorw("shutdown", "error", err)
	}
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}
