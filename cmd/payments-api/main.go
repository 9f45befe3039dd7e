package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rvaldezm/orderstream/api/controllers"
	"github.com/rvaldezm/orderstream/api/routes"
	"github.com/rvaldezm/orderstream/internal/payments"
	"github.com/rvaldezm/orderstream/pkg/config"
	"github.com/rvaldezm/orderstream/pkg/db"
	"github.com/rvaldezm/orderstream/pkg/env"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/migrate"
	"github.com/rvaldezm/orderstream/pkg/redis"
	"github.com/rvaldezm/orderstream/pkg/tracing"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "payments-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "payments-api"

	logg = logger.New(logger.Options{
		ServiceName: "payments-api",
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

	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Repo:   payments.NewRepository(dbClient.DB()),
		Logger: logg,
		Tracer: tracing.NewOtel("payments"),
	})
	requireResource(ctx, logg, "payments service", err)

	router := routes.PaymentsRouter(cfg, logg, redisClient, paymentsSvc,
		controllers.NamedPinger{Name: "postgres", Pinger: dbClient},
		controllers.NamedPinger{Name: "redis", Pinger: redisClient},
	)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting payments api")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(runCtx, "payments api stopped unexpectedly", err)
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
