package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rvaldezm/orderstream/api/controllers"
	"github.com/rvaldezm/orderstream/api/routes"
	"github.com/rvaldezm/orderstream/internal/orders"
	"github.com/rvaldezm/orderstream/internal/payments"
	"github.com/rvaldezm/orderstream/pkg/config"
	"github.com/rvaldezm/orderstream/pkg/db"
	"github.com/rvaldezm/orderstream/pkg/env"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/migrate"
	"github.com/rvaldezm/orderstream/pkg/pubsub"
	"github.com/rvaldezm/orderstream/pkg/redis"
	"github.com/rvaldezm/orderstream/pkg/tracing"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "orders-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "orders-api"

	logg = logger.New(logger.Options{
		ServiceName: "orders-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, false, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	publisher, err := orders.NewPubSubPublisher(pubsubClient)
	requireResource(ctx, logg, "event publisher", err)

	charger, err := payments.NewHTTPClient(cfg.Payments)
	requireResource(ctx, logg, "payments client", err)

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:           orders.NewRepository(dbClient.DB()),
		Charger:        charger,
		Publisher:      publisher,
		Logger:         logg,
		Tracer:         tracing.NewOtel("orders"),
		PublishTimeout: cfg.PubSub.PublishTimeout,
	})
	requireResource(ctx, logg, "orders service", err)

	router := routes.OrdersRouter(cfg, logg, redisClient, ordersSvc,
		controllers.NamedPinger{Name: "postgres", Pinger: dbClient},
		controllers.NamedPinger{Name: "redis", Pinger: redisClient},
		controllers.NamedPinger{Name: "pubsub", Pinger: pubsubClient},
	)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting orders api")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(runCtx, "orders api stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
