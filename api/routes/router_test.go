package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvaldezm/orderstream/api/controllers"
	"github.com/rvaldezm/orderstream/internal/orders"
	"github.com/rvaldezm/orderstream/internal/payments"
	"github.com/rvaldezm/orderstream/internal/queries"
	"github.com/rvaldezm/orderstream/pkg/config"
	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubOrdersService struct{}

func (stubOrdersService) ProcessOrder(context.Context, orders.ProcessOrderInput) (*orders.ProcessOrderResult, error) {
	return &orders.ProcessOrderResult{OrderID: 1, PaymentID: 2, CustomerName: "Laura Soto", EventPublished: true}, nil
}

func (stubOrdersService) GetOrder(context.Context, int64) (*models.Order, error) {
	return &models.Order{ID: 1}, nil
}

func (stubOrdersService) ListOrders(context.Context, int, int) ([]orders.OrderWithCustomer, error) {
	return nil, nil
}

func (stubOrdersService) ListCustomers(context.Context, int, int) ([]models.Customer, error) {
	return nil, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Charge(context.Context, payments.ChargeInput) (*payments.ChargeResult, error) {
	return &payments.ChargeResult{PaymentID: 1}, nil
}

func (stubPaymentsService) GetPayment(context.Context, int64) (*models.Payment, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubPaymentsService) ListByOrder(context.Context, int64) ([]models.Payment, error) {
	return nil, nil
}

type stubQueriesService struct{}

func (stubQueriesService) ProcessEvent(context.Context, []byte, string) (*queries.UpsertResult, error) {
	return nil, nil
}

func (stubQueriesService) GetByOrderID(context.Context, int64) (*queries.QueryRecord, error) {
	return &queries.QueryRecord{OrderID: 1}, nil
}

func (stubQueriesService) List(context.Context, int, int) ([]queries.QueryRecord, error) {
	return nil, nil
}

func (stubQueriesService) Totals(context.Context) (*queries.Totals, error) {
	return &queries.Totals{}, nil
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.Disabled})
}

func TestOrdersRouterServesPipeline(t *testing.T) {
	router := OrdersRouter(testConfig(), testLogger(), nil, stubOrdersService{},
		controllers.NamedPinger{Name: "postgres", Pinger: stubPinger{}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	body := strings.NewReader(`{"customer_id":1,"amount":"10.00","payment_method":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Idempotency-Key", "k1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"event_published":true`)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestPaymentsRouterServesCharges(t *testing.T) {
	router := PaymentsRouter(testConfig(), testLogger(), nil, stubPaymentsService{})

	body := strings.NewReader(`{"order_id":1,"customer_id":1,"amount":"10.00","payment_method":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", body)
	req.Header.Set("Idempotency-Key", "k2")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestQueriesRouterReadinessFailsWhenDependencyDown(t *testing.T) {
	router := QueriesRouter(testConfig(), testLogger(), stubQueriesService{},
		controllers.NamedPinger{Name: "mongo", Pinger: stubPinger{err: fmt.Errorf("no reachable servers")}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/queries/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
