package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/enums"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/logger"
)

type stubRepo struct {
	created   []*models.Payment
	createErr error
	findErr   error
	payment   *models.Payment
}

func (s *stubRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	payment.ID = int64(len(s.created) + 1)
	payment.ChargedAt = time.Now()
	s.created = append(s.created, payment)
	return payment, nil
}

func (s *stubRepo) FindPayment(ctx context.Context, id int64) (*models.Payment, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.payment, nil
}

func (s *stubRepo) FindPaymentsByOrderRef(ctx context.Context, orderRef int64) ([]models.Payment, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.payment == nil {
		return nil, nil
	}
	return []models.Payment{*s.payment}, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCharge_Succeeds(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	result, err := svc.Charge(context.Background(), ChargeInput{
		OrderRef:   42,
		CustomerID: 7,
		Amount:     decimal.RequireFromString("150.00"),
		Method:     enums.PaymentMethodCredit,
	})
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if result.PaymentID != 1 {
		t.Fatalf("payment id = %d, want 1", result.PaymentID)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 payment persisted, got %d", len(repo.created))
	}
	if repo.created[0].OrderRef != 42 {
		t.Fatalf("order ref = %d, want 42", repo.created[0].OrderRef)
	}
	if repo.created[0].CustomerID != 7 {
		t.Fatalf("customer id = %d, want 7", repo.created[0].CustomerID)
	}
}

func TestCharge_RequiresCustomerReference(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	_, err := svc.Charge(context.Background(), ChargeInput{
		OrderRef: 1,
		Amount:   decimal.NewFromInt(10),
		Method:   enums.PaymentMethodCash,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no payment should be persisted without a customer")
	}
}

func TestCharge_RejectsNonChargeableMethods(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	for _, method := range []enums.PaymentMethod{
		enums.PaymentMethodTransfer,
		enums.PaymentMethodWallet,
		enums.PaymentMethodUnknown,
		enums.PaymentMethod(9),
	} {
		_, err := svc.Charge(context.Background(), ChargeInput{
			OrderRef:   1,
			CustomerID: 1,
			Amount:     decimal.NewFromInt(10),
			Method:     method,
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("method %d: expected validation error, got %v", method, err)
		}
	}
	if len(repo.created) != 0 {
		t.Fatalf("no payment should be persisted for rejected methods")
	}
}

func TestCharge_RejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.Charge(context.Background(), ChargeInput{
			OrderRef:   1,
			CustomerID: 1,
			Amount:     amount,
			Method:     enums.PaymentMethodCash,
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("amount %s: expected validation error, got %v", amount, err)
		}
	}
}

func TestCharge_WrapsRepoErrors(t *testing.T) {
	repo := &stubRepo{createErr: errors.New("connection reset")}
	svc := newTestService(t, repo)

	_, err := svc.Charge(context.Background(), ChargeInput{
		OrderRef:   1,
		CustomerID: 1,
		Amount:     decimal.NewFromInt(10),
		Method:     enums.PaymentMethodCash,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !errors.Is(err, repo.createErr) {
		t.Fatalf("cause should be preserved")
	}
}

func TestGetPayment_NotFound(t *testing.T) {
	repo := &stubRepo{findErr: fmt.Errorf("take payment: %w", gorm.ErrRecordNotFound)}
	svc := newTestService(t, repo)

	_, err := svc.GetPayment(context.Background(), 7)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
