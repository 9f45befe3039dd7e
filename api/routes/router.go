package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvaldezm/orderstream/api/controllers"
	"github.com/rvaldezm/orderstream/api/middleware"
	"github.com/rvaldezm/orderstream/internal/orders"
	"github.com/rvaldezm/orderstream/internal/payments"
	"github.com/rvaldezm/orderstream/internal/queries"
	"github.com/rvaldezm/orderstream/pkg/config"
	"github.com/rvaldezm/orderstream/pkg/logger"
	pkgredis "github.com/rvaldezm/orderstream/pkg/redis"
)

// A nil *Client must not reach the middleware as a non-nil interface.
func idempotencyStore(redisClient *pkgredis.Client) pkgredis.IdempotencyStore {
	if redisClient == nil {
		return nil
	}
	return redisClient
}

func rateLimitStore(redisClient *pkgredis.Client) pkgredis.RateLimitStore {
	if redisClient == nil {
		return nil
	}
	return redisClient
}

func writePolicy(name string, cfg *config.Config) middleware.RateLimitPolicy {
	return middleware.RateLimitPolicy{
		Name:   name,
		Window: cfg.RateLimit.Window,
		Limit:  cfg.RateLimit.Limit,
	}
}

func baseRouter(logg *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	return r
}

// OrdersRouter serves the order pipeline API.
func OrdersRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *pkgredis.Client,
	ordersSvc orders.Service,
	deps ...controllers.NamedPinger,
) http.Handler {
	r := baseRouter(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps...))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

		r.With(middleware.RateLimit(writePolicy("orders-create", cfg), rateLimitStore(redisClient), logg)).
			Post("/orders", controllers.CreateOrder(ordersSvc, logg))
		r.Get("/orders", controllers.ListOrders(ordersSvc, logg))
		r.Get("/orders/{orderId}", controllers.GetOrder(ordersSvc, logg))
		r.Get("/customers", controllers.ListCustomers(ordersSvc, logg))
	})

	return r
}

// PaymentsRouter serves the synchronous charge API.
func PaymentsRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *pkgredis.Client,
	paymentsSvc payments.Service,
	deps ...controllers.NamedPinger,
) http.Handler {
	r := baseRouter(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps...))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

		r.With(middleware.RateLimit(writePolicy("payments-charge", cfg), rateLimitStore(redisClient), logg)).
			Post("/payments", controllers.ChargePayment(paymentsSvc, logg))
		r.Get("/payments/{paymentId}", controllers.GetPayment(paymentsSvc, logg))
		r.Get("/orders/{orderId}/payments", controllers.ListPaymentsByOrder(paymentsSvc, logg))
	})

	return r
}

// QueriesRouter serves reads over the materialized store.
func QueriesRouter(
	cfg *config.Config,
	logg *logger.Logger,
	queriesSvc queries.Service,
	deps ...controllers.NamedPinger,
) http.Handler {
	r := baseRouter(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps...))
	})

	r.Route("/api/v1/queries", func(r chi.Router) {
		r.Get("/", controllers.ListQueryRecords(queriesSvc, logg))
		r.Get("/metrics", controllers.QueryTotals(queriesSvc, logg))
		r.Get("/order/{orderId}", controllers.GetQueryRecord(queriesSvc, logg))
	})

	return r
}
