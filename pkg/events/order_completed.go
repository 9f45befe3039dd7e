package events

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// TopicOrderCompleted carries OrderCompleted events from the order
// pipeline to the query materializer.
const TopicOrderCompleted = "order-completed"

// OrderCompleted is published after an order is charged. Field names are a
// wire contract shared with legacy consumers and must stay as-is.
type OrderCompleted struct {
	OrderID      int64           `json:"idPedido"`
	CustomerName string          `json:"nombreCliente"`
	PaymentID    int64           `json:"idPago"`
	Amount       decimal.Decimal `json:"montoPago"`
	PaymentForm  string          `json:"formaPago"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Validate checks the fields a materializer cannot proceed without and
// reports every failure, not just the first.
func (e OrderCompleted) Validate() error {
	var errs error
	if e.OrderID <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("idPedido must be positive, got %d", e.OrderID))
	}
	if e.CustomerName == "" {
		errs = multierr.Append(errs, fmt.Errorf("nombreCliente is required"))
	}
	if !e.Amount.IsPositive() {
		errs = multierr.Append(errs, fmt.Errorf("montoPago must be positive, got %s", e.Amount))
	}
	return errs
}
