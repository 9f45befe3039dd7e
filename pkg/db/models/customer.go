package models

import "time"

// Customer is the buyer directory row joined during order processing.
type Customer struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Email     *string   `gorm:"column:email;unique"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements gorm's Tabler.
func (Customer) TableName() string { return "customers" }
