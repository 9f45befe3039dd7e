package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/rvaldezm/orderstream/internal/payments"
	"github.com/rvaldezm/orderstream/pkg/db"
	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/enums"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/events"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/tracing"
)

// Service runs the order pipeline and serves order/customer reads.
type Service interface {
	ProcessOrder(ctx context.Context, input ProcessOrderInput) (*ProcessOrderResult, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]OrderWithCustomer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]models.Customer, error)
}

type service struct {
	repo           Repository
	charger        payments.Charger
	publisher      EventPublisher
	logg           *logger.Logger
	tracer         tracing.Tracer
	publishTimeout time.Duration
	now            func() time.Time
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo           Repository
	Charger        payments.Charger
	Publisher      EventPublisher
	Logger         *logger.Logger
	Tracer         tracing.Tracer
	PublishTimeout time.Duration
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Charger == nil {
		return nil, fmt.Errorf("payment charger required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	tracer := params.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}
	publishTimeout := params.PublishTimeout
	if publishTimeout <= 0 {
		publishTimeout = 30 * time.Second
	}
	return &service{
		repo:           params.Repo,
		charger:        params.Charger,
		publisher:      params.Publisher,
		logg:           params.Logger,
		tracer:         tracer,
		publishTimeout: publishTimeout,
		now:            time.Now,
	}, nil
}

// ProcessOrder runs the pipeline: persist the order, resolve the customer
// name, charge the payment, then publish the completed event. Persisting and
// charging are fatal when they fail; the name lookup falls back to a
// placeholder and a failed publish is logged without failing the order.
func (s *service) ProcessOrder(ctx context.Context, input ProcessOrderInput) (*ProcessOrderResult, error) {
	ctx, span := s.tracer.StartSpan(ctx, "orders.ProcessOrder")
	defer span.End()
	span.SetTag("customer_id", input.CustomerID)
	span.SetTag("payment_method", int64(input.PaymentMethod))

	if err := s.validateInput(input); err != nil {
		span.SetError(err)
		return nil, err
	}

	order, err := s.insertOrder(ctx, input)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID)
	span.SetTag("order_id", order.ID)

	customerName := s.resolveCustomerName(ctx, input.CustomerID)

	chargeResult, err := s.chargePayment(ctx, order, input)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	ctx = s.logg.WithPaymentID(ctx, chargeResult.PaymentID)

	if err := s.repo.UpdateOrderPayment(ctx, order.ID, chargeResult.PaymentID, enums.OrderStatusCompleted.String()); err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment on order")
		span.SetError(wrapped)
		return nil, wrapped
	}

	published := s.publishCompleted(ctx, order, chargeResult, customerName, input)
	span.SetTag("event_published", published)

	s.logg.Info(ctx, "order processed")
	return &ProcessOrderResult{
		OrderID:        order.ID,
		PaymentID:      chargeResult.PaymentID,
		CustomerName:   customerName,
		EventPublished: published,
	}, nil
}

func (s *service) validateInput(input ProcessOrderInput) error {
	if input.CustomerID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.PaymentMethod.IsChargeable() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment method %d not accepted for charges", input.PaymentMethod))
	}
	return nil
}

func (s *service) insertOrder(ctx context.Context, input ProcessOrderInput) (*models.Order, error) {
	ctx, span := s.tracer.StartSpan(ctx, "orders.insert")
	defer span.End()

	order, err := s.repo.CreateOrder(ctx, &models.Order{
		CustomerID:    input.CustomerID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Status:        enums.OrderStatusPending,
	})
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		span.SetError(wrapped)
		return nil, wrapped
	}
	return order, nil
}

// resolveCustomerName is best effort. Lookup failures degrade to a
// placeholder so a missing directory row never blocks a paid order.
func (s *service) resolveCustomerName(ctx context.Context, customerID int64) string {
	ctx, span := s.tracer.StartSpan(ctx, "orders.resolveCustomer")
	defer span.End()

	customer, err := s.repo.FindCustomer(ctx, customerID)
	if err != nil {
		if db.IsNotFound(err) {
			s.logg.Warn(ctx, fmt.Sprintf("customer %d not found, continuing", customerID))
		} else {
			span.SetError(err)
			s.logg.Warn(ctx, fmt.Sprintf("customer lookup failed, continuing: %v", err))
		}
		return UnknownCustomerName
	}
	return customer.Name
}

func (s *service) chargePayment(ctx context.Context, order *models.Order, input ProcessOrderInput) (*payments.ChargeResult, error) {
	ctx, span := s.tracer.StartSpan(ctx, "orders.chargePayment")
	defer span.End()

	result, err := s.charger.Charge(ctx, payments.ChargeInput{
		OrderRef:   order.ID,
		CustomerID: order.CustomerID,
		Amount:     input.Amount,
		Method:     input.PaymentMethod,
	})
	if err != nil {
		span.SetError(err)
		if updateErr := s.repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusFailed.String()); updateErr != nil {
			s.logg.Error(ctx, "marking order failed after charge error", updateErr)
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "charge payment")
	}
	return result, nil
}

// publishCompleted reports delivery without failing the order: the charge
// already settled, so the caller gets a success either way.
func (s *service) publishCompleted(ctx context.Context, order *models.Order, charge *payments.ChargeResult, customerName string, input ProcessOrderInput) bool {
	ctx, span := s.tracer.StartSpan(ctx, "orders.publishCompleted")
	defer span.End()

	publishCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	event := events.OrderCompleted{
		OrderID:      order.ID,
		CustomerName: customerName,
		PaymentID:    charge.PaymentID,
		Amount:       input.Amount,
		PaymentForm:  input.PaymentMethod.String(),
		Timestamp:    s.now().UTC(),
	}

	msgID, err := s.publisher.PublishOrderCompleted(publishCtx, event)
	if err != nil {
		span.SetError(err)
		s.logg.Error(ctx, "publishing completed event", err)
		return false
	}

	s.logg.Info(s.logg.WithField(ctx, "message_id", msgID), "completed event published")
	return true
}

func (s *service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, limit, offset int) ([]OrderWithCustomer, error) {
	rows, err := s.repo.ListOrders(ctx, normalizeLimit(limit), max(offset, 0))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

func (s *service) ListCustomers(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	rows, err := s.repo.ListCustomers(ctx, normalizeLimit(limit), max(offset, 0))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return rows, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
