package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/kunalverma/groupbuy-backend/pkg/config"
	"github.com/kunalverma/groupbuy-backend/pkg/db"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/migrate"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
	"github.com/kunalverma/groupbuy-backend/pkg/pubsub"
)

func main() {
	bootCtx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(bootCtx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(bootCtx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		logg.Error(bootCtx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer closeWith(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		logg.Error(bootCtx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(bootCtx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(bootCtx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer closeWith(logg, "pubsub client", pubsubClient.Close)

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(bootCtx, "failed to create outbox publisher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(bootCtx, os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-publisher",
	})
	logg.Info(ctx, "starting outbox publisher")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

func closeWith(logg *logger.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}
