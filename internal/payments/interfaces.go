package payments

import (
	"context"

	"github.com/rvaldezm/orderstream/pkg/db/models"
)

// Repository defines persistence operations for the payments table.
type Repository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPayment(ctx context.Context, id int64) (*models.Payment, error)
	FindPaymentsByOrderRef(ctx context.Context, orderRef int64) ([]models.Payment, error)
}

// Charger is the port through which the order pipeline settles charges.
// The in-process service and the HTTP client both satisfy it.
type Charger interface {
	Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error)
}
