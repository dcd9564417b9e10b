package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/kunalverma/groupbuy-backend/internal/notifications"
	"github.com/kunalverma/groupbuy-backend/internal/offers"
	"github.com/kunalverma/groupbuy-backend/internal/retailers"
	"github.com/kunalverma/groupbuy-backend/pkg/config"
	"github.com/kunalverma/groupbuy-backend/pkg/db"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox/idempotency"
	"github.com/kunalverma/groupbuy-backend/pkg/pubsub"
	"github.com/kunalverma/groupbuy-backend/pkg/redis"
)

const idempotencyTTL = 7 * 24 * time.Hour

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "notifications-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "notifications-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	manager, err := idempotency.NewManager(redisClient, idempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	consumer, err := notifications.NewConsumer(
		notifications.NewRepository(dbClient.DB()),
		retailers.NewRepository(dbClient.DB()),
		offers.NewRepository(dbClient.DB()),
		pubsubClient.DomainSubscription(),
		manager,
		logg,
	)
	requireResource(ctx, logg, "notifications consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": "notifications-worker",
		"env":         cfg.App.Env,
	})
	logg.Info(runCtx, "notifications worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "notifications worker not working", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
