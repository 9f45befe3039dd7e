package payments

import (
	"context"
	"fmt"

	"github.com/rvaldezm/orderstream/pkg/db"
	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/enums"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/tracing"
)

// Service defines the payment operations exposed over HTTP and in process.
type Service interface {
	Charger
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderRef int64) ([]models.Payment, error)
}

type service struct {
	repo   Repository
	logg   *logger.Logger
	tracer tracing.Tracer
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Tracer tracing.Tracer
}

// NewService builds a payments service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	tracer := params.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &service{
		repo:   params.Repo,
		logg:   params.Logger,
		tracer: tracer,
	}, nil
}

func (s *service) Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	ctx, span := s.tracer.StartSpan(ctx, "payments.Charge")
	defer span.End()
	span.SetTag("order_id", input.OrderRef)
	span.SetTag("payment_method", int64(input.Method))

	if input.OrderRef <= 0 {
		err := pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
		span.SetError(err)
		return nil, err
	}
	if input.CustomerID <= 0 {
		err := pkgerrors.New(pkgerrors.CodeValidation, "customer reference required")
		span.SetError(err)
		return nil, err
	}
	if !input.Amount.IsPositive() {
		err := pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
		span.SetError(err)
		return nil, err
	}
	if !input.Method.IsChargeable() {
		err := pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment method %d not accepted for charges", input.Method)).
			WithDetails(map[string]any{"accepted": []int64{
				int64(enums.PaymentMethodCash),
				int64(enums.PaymentMethodCredit),
				int64(enums.PaymentMethodDebit),
			}})
		span.SetError(err)
		return nil, err
	}

	payment, err := s.repo.CreatePayment(ctx, &models.Payment{
		OrderRef:   input.OrderRef,
		CustomerID: input.CustomerID,
		Amount:     input.Amount,
		Method:     input.Method,
	})
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment")
		span.SetError(wrapped)
		return nil, wrapped
	}

	ctx = s.logg.WithPaymentID(ctx, payment.ID)
	ctx = s.logg.WithOrderID(ctx, payment.OrderRef)
	s.logg.Info(ctx, "payment charged")

	return &ChargeResult{PaymentID: payment.ID, ChargedAt: payment.ChargedAt}, nil
}

func (s *service) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	payment, err := s.repo.FindPayment(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}

func (s *service) ListByOrder(ctx context.Context, orderRef int64) ([]models.Payment, error) {
	if orderRef <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}
	rows, err := s.repo.FindPaymentsByOrderRef(ctx, orderRef)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}
