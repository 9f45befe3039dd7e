package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/enums"
)

// ChargeInput carries the fields needed to settle a charge.
type ChargeInput struct {
	OrderRef   int64
	CustomerID int64
	Amount     decimal.Decimal
	Method     enums.PaymentMethod
}

// ChargeResult reports the settled charge.
type ChargeResult struct {
	PaymentID int64
	ChargedAt time.Time
}

// ChargeRequest is the wire shape accepted by POST /payments.
type ChargeRequest struct {
	OrderID       int64           `json:"order_id" validate:"required,gt=0"`
	CustomerID    int64           `json:"customer_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod int64           `json:"payment_method" validate:"required"`
}

// PaymentResponse is the wire shape returned for a payment.
type PaymentResponse struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	CustomerID    int64           `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod int64           `json:"payment_method"`
	MethodName    string          `json:"method_name"`
	ChargedAt     time.Time       `json:"charged_at"`
}

// NewPaymentResponse maps a stored payment to its wire shape.
func NewPaymentResponse(payment *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID,
		OrderID:       payment.OrderRef,
		CustomerID:    payment.CustomerID,
		Amount:        payment.Amount,
		PaymentMethod: int64(payment.Method),
		MethodName:    payment.Method.String(),
		ChargedAt:     payment.ChargedAt,
	}
}
