package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/enums"
)

// UnknownCustomerName is recorded when the customer lookup fails. Order
// processing continues; the name is presentation data, not a join key.
const UnknownCustomerName = "Customer Not Found"

// ProcessOrderInput carries the fields needed to run an order end to end.
type ProcessOrderInput struct {
	CustomerID    int64
	Amount        decimal.Decimal
	PaymentMethod enums.PaymentMethod
}

// ProcessOrderResult reports the completed pipeline.
type ProcessOrderResult struct {
	OrderID        int64
	PaymentID      int64
	CustomerName   string
	EventPublished bool
}

// CreateOrderRequest is the wire shape accepted by POST /orders.
type CreateOrderRequest struct {
	CustomerID    int64           `json:"customer_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod int64           `json:"payment_method" validate:"required"`
}

// ProcessOrderResponse is the wire shape returned by POST /orders.
type ProcessOrderResponse struct {
	OrderID        int64  `json:"order_id"`
	PaymentID      int64  `json:"payment_id"`
	CustomerName   string `json:"customer_name"`
	EventPublished bool   `json:"event_published"`
}

// NewProcessOrderResponse maps a pipeline result to its wire shape.
func NewProcessOrderResponse(result ProcessOrderResult) ProcessOrderResponse {
	return ProcessOrderResponse{
		OrderID:        result.OrderID,
		PaymentID:      result.PaymentID,
		CustomerName:   result.CustomerName,
		EventPublished: result.EventPublished,
	}
}

// OrderResponse is the wire shape returned for an order.
type OrderResponse struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	CustomerName   string          `json:"customer_name,omitempty"`
	PaymentID      *int64          `json:"payment_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  int64           `json:"payment_method"`
	Status         string          `json:"status"`
	EventPublished *bool           `json:"event_published,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CustomerResponse is the wire shape returned for a customer.
type CustomerResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// NewOrderResponse maps a stored order to its wire shape.
func NewOrderResponse(order models.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		PaymentID:     order.PaymentID,
		Amount:        order.Amount,
		PaymentMethod: int64(order.PaymentMethod),
		Status:        order.Status.String(),
		CreatedAt:     order.CreatedAt,
	}
}

// NewCustomerResponse maps a stored customer to its wire shape.
func NewCustomerResponse(customer models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
	}
}
