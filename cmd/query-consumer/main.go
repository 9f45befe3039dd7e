package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rvaldezm/orderstream/api/controllers"
	"github.com/rvaldezm/orderstream/api/routes"
	"github.com/rvaldezm/orderstream/internal/queries"
	"github.com/rvaldezm/orderstream/pkg/config"
	"github.com/rvaldezm/orderstream/pkg/env"
	"github.com/rvaldezm/orderstream/pkg/instance"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/metrics"
	"github.com/rvaldezm/orderstream/pkg/mongo"
	"github.com/rvaldezm/orderstream/pkg/pubsub"
	"github.com/rvaldezm/orderstream/pkg/tracing"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "query-consumer"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "query-consumer"

	logg = logger.New(logger.Options{
		ServiceName: "query-consumer",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	mongoClient, err := mongo.New(ctx, cfg.Mongo, logg)
	requireResource(ctx, logg, "mongo", err)
	defer mongoClient.Close(context.Background())

	store, err := queries.NewMongoStore(queries.MongoStoreParams{
		Collection:     mongoClient.Collection(cfg.Mongo.Collection),
		Logger:         logg,
		RaceRetryDelay: cfg.Consumer.RaceRetryDelay,
	})
	requireResource(ctx, logg, "query store", err)

	if err := store.EnsureIndexes(ctx); err != nil {
		logg.Error(ctx, "failed to ensure query indexes", err)
		os.Exit(1)
	}

	queriesSvc, err := queries.NewService(queries.ServiceParams{
		Store:  store,
		Logger: logg,
		Tracer: tracing.NewOtel("queries"),
	})
	requireResource(ctx, logg, "query service", err)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, true, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	registry := prometheus.NewRegistry()
	consumer, err := queries.NewConsumer(queries.ConsumerParams{
		Service:           queriesSvc,
		Subscription:      pubsubClient.CompletedSubscription(),
		Logger:            logg,
		Metrics:           metrics.NewConsumerMetrics(registry),
		StoreBackoff:      cfg.Consumer.StoreBackoff,
		UnexpectedBackoff: cfg.Consumer.UnexpectedBackoff,
	})
	requireResource(ctx, logg, "consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
		"instance":    instance.GetID(),
	})

	go serveMetrics(runCtx, cfg, logg, registry)
	go serveQueryAPI(runCtx, cfg, logg, queriesSvc, mongoClient, pubsubClient)

	logg.Info(runCtx, "query consumer ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "query consumer not working", err)
		os.Exit(1)
	}
}

func serveMetrics(ctx context.Context, cfg *config.Config, logg *logger.Logger, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := ":" + cfg.Consumer.MetricsPort
	logg.Info(logg.WithFields(ctx, map[string]any{"addr": addr}), "serving consumer metrics")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}

func serveQueryAPI(ctx context.Context, cfg *config.Config, logg *logger.Logger, svc queries.Service, mongoClient *mongo.Client, pubsubClient *pubsub.Client) {
	router := routes.QueriesRouter(cfg, logg, svc,
		controllers.NamedPinger{Name: "mongo", Pinger: mongoClient},
		controllers.NamedPinger{Name: "pubsub", Pinger: pubsubClient},
	)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logg.Info(logg.WithFields(ctx, map[string]any{"addr": addr}), "serving query api")
	if err := http.ListenAndServe(addr, router); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "query api stopped unexpectedly", err)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
