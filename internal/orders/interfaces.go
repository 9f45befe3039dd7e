package orders

import (
	"context"

	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/events"
)

// OrderWithCustomer is the list read model: an order row joined with the
// customer name for display.
type OrderWithCustomer struct {
	models.Order
	CustomerName string
}

// Repository defines persistence operations for orders and customers.
type Repository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, id int64) (*models.Order, error)
	FindCustomer(ctx context.Context, id int64) (*models.Customer, error)
	UpdateOrderPayment(ctx context.Context, orderID, paymentID int64, status string) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	ListOrders(ctx context.Context, limit, offset int) ([]OrderWithCustomer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]models.Customer, error)
}

// EventPublisher delivers completed-order events to the query side.
type EventPublisher interface {
	PublishOrderCompleted(ctx context.Context, event events.OrderCompleted) (string, error)
}
