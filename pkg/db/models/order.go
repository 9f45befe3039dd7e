package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldezm/orderstream/pkg/enums"
)

// Order is a processed purchase. PaymentID is filled after the charge step
// succeeds; orders that fail before charging keep it nil.
type Order struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID    int64               `gorm:"column:customer_id;not null;index"`
	PaymentID     *int64              `gorm:"column:payment_id;index"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements gorm's Tabler.
func (Order) TableName() string { return "orders" }
