package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldezm/orderstream/pkg/enums"
)

// Payment is a settled charge recorded by the payments service.
type Payment struct {
	ID         int64               `gorm:"column:id;primaryKey;autoIncrement"`
	OrderRef   int64               `gorm:"column:order_ref;not null;index"`
	CustomerID int64               `gorm:"column:customer_id;not null;index"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method     enums.PaymentMethod `gorm:"column:method;not null"`
	ChargedAt  time.Time           `gorm:"column:charged_at;autoCreateTime"`
}

// TableName implements gorm's Tabler.
func (Payment) TableName() string { return "payments" }
