package db

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type orderRow struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	CustomerID int64
	Status     string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&orderRow{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	db := newTestDB(t)

	var row orderRow
	err := db.Where("id = ?", 999).First(&row).Error
	if !IsNotFound(err) {
		t.Fatalf("expected not-found for missing row, got %v", err)
	}
	if !IsNotFound(fmt.Errorf("load order: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("wrapped record-not-found must still match")
	}
	if IsNotFound(nil) {
		t.Fatal("nil error must not match")
	}
}
