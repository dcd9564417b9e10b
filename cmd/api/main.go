package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kunalverma/groupbuy-backend/api/routes"
	authsvc "github.com/kunalverma/groupbuy-backend/internal/auth"
	"github.com/kunalverma/groupbuy-backend/internal/catalog"
	"github.com/kunalverma/groupbuy-backend/internal/geo"
	"github.com/kunalverma/groupbuy-backend/internal/notifications"
	"github.com/kunalverma/groupbuy-backend/internal/offers"
	"github.com/kunalverma/groupbuy-backend/internal/orders"
	"github.com/kunalverma/groupbuy-backend/internal/payments"
	"github.com/kunalverma/groupbuy-backend/internal/retailers"
	"github.com/kunalverma/groupbuy-backend/pkg/config"
	"github.com/kunalverma/groupbuy-backend/pkg/db"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/metrics"
	"github.com/kunalverma/groupbuy-backend/pkg/migrate"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
	"github.com/kunalverma/groupbuy-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	geoRepo := geo.NewRepository(dbClient.DB())
	geoService, err := geo.NewService(geoRepo, dbClient, outboxService, cfg.Zoning.DefaultRadiusKm)
	if err != nil {
		logg.Error(context.Background(), "failed to create geo service", err)
		os.Exit(1)
	}

	retailersRepo := retailers.NewRepository(dbClient.DB())
	retailersService, err := retailers.NewService(retailersRepo, geoService, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create retailers service", err)
		os.Exit(1)
	}

	adminChecker := authsvc.NewAdminChecker(cfg.Admin.Phones)
	authService, err := authsvc.NewService(redisClient, retailersRepo, adminChecker, cfg.JWT, cfg.OTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	offersRepo := offers.NewRepository(dbClient.DB())
	offersService, err := offers.NewService(offersRepo, catalogService, geoRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	placementMetrics := metrics.NewOrderPlacementMetrics(prometheus.DefaultRegisterer)
	ordersService, err := orders.NewService(ordersRepo, offersRepo, retailersRepo, geoRepo, dbClient, outboxService, placementMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsRepo := payments.NewRepository(dbClient.DB())
	paymentsService, err := payments.NewService(paymentsRepo, ordersRepo, retailersRepo, dbClient, outboxService, cfg.Payments.LockWindow)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			retailersService,
			geoService,
			catalogService,
			offersService,
			ordersService,
			paymentsService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
