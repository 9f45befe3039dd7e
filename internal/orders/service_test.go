package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rvaldezm/orderstream/internal/payments"
	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/enums"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/events"
	"github.com/rvaldezm/orderstream/pkg/logger"
)

type stubOrdersRepo struct {
	orders        map[int64]*models.Order
	customers     map[int64]*models.Customer
	nextID        int64
	createErr     error
	customerErr   error
	statusUpdates []string
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:    map[int64]*models.Order{},
		customers: map[int64]*models.Customer{},
	}
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	order.ID = s.nextID
	order.CreatedAt = time.Now()
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrdersRepo) FindCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	if s.customerErr != nil {
		return nil, s.customerErr
	}
	customer, ok := s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return customer, nil
}

func (s *stubOrdersRepo) UpdateOrderPayment(ctx context.Context, orderID, paymentID int64, status string) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.PaymentID = &paymentID
	order.Status = enums.OrderStatus(status)
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

func (s *stubOrdersRepo) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = enums.OrderStatus(status)
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, limit, offset int) ([]OrderWithCustomer, error) {
	var rows []OrderWithCustomer
	for _, order := range s.orders {
		rows = append(rows, OrderWithCustomer{Order: *order})
	}
	return rows, nil
}

func (s *stubOrdersRepo) ListCustomers(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	var rows []models.Customer
	for _, customer := range s.customers {
		rows = append(rows, *customer)
	}
	return rows, nil
}

type stubCharger struct {
	err    error
	nextID int64
	inputs []payments.ChargeInput
}

func (s *stubCharger) Charge(ctx context.Context, input payments.ChargeInput) (*payments.ChargeResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	s.inputs = append(s.inputs, input)
	return &payments.ChargeResult{PaymentID: s.nextID, ChargedAt: time.Now()}, nil
}

type stubPublisher struct {
	err    error
	events []events.OrderCompleted
}

func (s *stubPublisher) PublishOrderCompleted(ctx context.Context, event events.OrderCompleted) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.events = append(s.events, event)
	return "msg-1", nil
}

func newSagaService(t *testing.T, repo Repository, charger payments.Charger, publisher EventPublisher) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Charger:   charger,
		Publisher: publisher,
		Logger:    logger.New(logger.Options{Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validInput() ProcessOrderInput {
	return ProcessOrderInput{
		CustomerID:    7,
		Amount:        decimal.RequireFromString("120.00"),
		PaymentMethod: enums.PaymentMethodCredit,
	}
}

func TestProcessOrder_FullPipeline(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.customers[7] = &models.Customer{ID: 7, Name: "Laura Soto"}
	charger := &stubCharger{}
	publisher := &stubPublisher{}
	svc := newSagaService(t, repo, charger, publisher)

	result, err := svc.ProcessOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("process order: %v", err)
	}
	if result.OrderID != 1 || result.PaymentID != 1 {
		t.Fatalf("unexpected ids: %+v", result)
	}
	if result.CustomerName != "Laura Soto" {
		t.Fatalf("customer name = %q", result.CustomerName)
	}
	if !result.EventPublished {
		t.Fatalf("event should be published")
	}

	order := repo.orders[1]
	if order.Status != enums.OrderStatusCompleted {
		t.Fatalf("order status = %s", order.Status)
	}
	if order.PaymentID == nil || *order.PaymentID != 1 {
		t.Fatalf("payment id not recorded on order")
	}

	if len(charger.inputs) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(charger.inputs))
	}
	if charger.inputs[0].CustomerID != 7 || charger.inputs[0].OrderRef != 1 {
		t.Fatalf("charge input wrong: %+v", charger.inputs[0])
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.OrderID != 1 || event.PaymentID != 1 {
		t.Fatalf("event ids wrong: %+v", event)
	}
	if event.CustomerName != "Laura Soto" || event.PaymentForm != "TDC" {
		t.Fatalf("event payload wrong: %+v", event)
	}
	if !event.Amount.Equal(decimal.RequireFromString("120.00")) {
		t.Fatalf("event amount = %s", event.Amount)
	}
}

func TestProcessOrder_MissingCustomerUsesPlaceholder(t *testing.T) {
	repo := newStubOrdersRepo()
	charger := &stubCharger{}
	publisher := &stubPublisher{}
	svc := newSagaService(t, repo, charger, publisher)

	result, err := svc.ProcessOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("missing customer must not fail the order: %v", err)
	}
	if result.CustomerName != UnknownCustomerName {
		t.Fatalf("customer name = %q, want %q", result.CustomerName, UnknownCustomerName)
	}
	if len(publisher.events) != 1 || publisher.events[0].CustomerName != UnknownCustomerName {
		t.Fatalf("event should carry the placeholder name")
	}
}

func TestProcessOrder_WrappedNotFoundUsesPlaceholder(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.customerErr = fmt.Errorf("preload customer: %w", gorm.ErrRecordNotFound)
	svc := newSagaService(t, repo, &stubCharger{}, &stubPublisher{})

	result, err := svc.ProcessOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("wrapped not-found must not fail the order: %v", err)
	}
	if result.CustomerName != UnknownCustomerName {
		t.Fatalf("customer name = %q, want %q", result.CustomerName, UnknownCustomerName)
	}
}

func TestProcessOrder_CustomerLookupErrorIsNotFatal(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.customerErr = errors.New("connection reset")
	svc := newSagaService(t, repo, &stubCharger{}, &stubPublisher{})

	result, err := svc.ProcessOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("lookup error must not fail the order: %v", err)
	}
	if result.CustomerName != UnknownCustomerName {
		t.Fatalf("customer name = %q", result.CustomerName)
	}
}

func TestProcessOrder_ChargeFailureIsFatal(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.customers[7] = &models.Customer{ID: 7, Name: "Laura Soto"}
	charger := &stubCharger{err: pkgerrors.New(pkgerrors.CodePayment, "card declined")}
	publisher := &stubPublisher{}
	svc := newSagaService(t, repo, charger, publisher)

	_, err := svc.ProcessOrder(context.Background(), validInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayment {
		t.Fatalf("expected payment error, got %v", err)
	}
	if repo.orders[1].Status != enums.OrderStatusFailed {
		t.Fatalf("order should be marked failed, got %s", repo.orders[1].Status)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("no event should be published on charge failure")
	}
}

func TestProcessOrder_PublishFailureStillSucceeds(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.customers[7] = &models.Customer{ID: 7, Name: "Laura Soto"}
	publisher := &stubPublisher{err: errors.New("broker unavailable")}
	svc := newSagaService(t, repo, &stubCharger{}, publisher)

	result, err := svc.ProcessOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("publish failure must not fail the order: %v", err)
	}
	if result.EventPublished {
		t.Fatalf("event publish should be reported as failed")
	}
	if repo.orders[1].Status != enums.OrderStatusCompleted {
		t.Fatalf("order should still complete, got %s", repo.orders[1].Status)
	}
}

func TestProcessOrder_InsertFailureIsFatal(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.createErr = errors.New("disk full")
	charger := &stubCharger{}
	svc := newSagaService(t, repo, charger, &stubPublisher{})

	_, err := svc.ProcessOrder(context.Background(), validInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(charger.inputs) != 0 {
		t.Fatalf("charge must not run when the insert fails")
	}
}

func TestProcessOrder_RejectsInvalidInput(t *testing.T) {
	svc := newSagaService(t, newStubOrdersRepo(), &stubCharger{}, &stubPublisher{})

	cases := []struct {
		name  string
		input ProcessOrderInput
	}{
		{"zero customer", ProcessOrderInput{Amount: decimal.NewFromInt(10), PaymentMethod: enums.PaymentMethodCash}},
		{"zero amount", ProcessOrderInput{CustomerID: 1, PaymentMethod: enums.PaymentMethodCash}},
		{"negative amount", ProcessOrderInput{CustomerID: 1, Amount: decimal.NewFromInt(-1), PaymentMethod: enums.PaymentMethodCash}},
		{"transfer not chargeable", ProcessOrderInput{CustomerID: 1, Amount: decimal.NewFromInt(10), PaymentMethod: enums.PaymentMethodTransfer}},
		{"unknown method", ProcessOrderInput{CustomerID: 1, Amount: decimal.NewFromInt(10)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ProcessOrder(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
