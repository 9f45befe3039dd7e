package queries

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldezm/orderstream/pkg/events"
)

func sampleEvent() events.OrderCompleted {
	return events.OrderCompleted{
		OrderID:      101,
		CustomerName: "Laura Soto",
		PaymentID:    55,
		Amount:       decimal.RequireFromString("149.90"),
		PaymentForm:  "efectivo",
		Timestamp:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewQueryRecord(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 5, 0, time.UTC)
	record := NewQueryRecord(sampleEvent(), "msg-1", "order-completed", now)

	if record.ID == "" {
		t.Fatalf("record id must be assigned")
	}
	if record.OrderID != 101 || record.PaymentID != 55 {
		t.Fatalf("ids wrong: %+v", record)
	}
	if record.Amount != "149.9" {
		t.Fatalf("amount = %q", record.Amount)
	}
	if record.PaymentMethod != 1 {
		t.Fatalf("payment method = %d, want 1 for efectivo", record.PaymentMethod)
	}
	if record.Status != "Procesado" {
		t.Fatalf("status = %q", record.Status)
	}
	if record.Metadata.ProcessingCount != 1 {
		t.Fatalf("processing count = %d", record.Metadata.ProcessingCount)
	}
	if record.Metadata.FirstSeenAt != now || record.QueriedAt != now || record.ProcessedAt != now {
		t.Fatalf("timestamps wrong: %+v", record)
	}
	if record.Metadata.SourceTopic != "order-completed" || record.Metadata.LastMessageID != "msg-1" {
		t.Fatalf("metadata wrong: %+v", record.Metadata)
	}
}

func TestMergeKeepsIdentityAndCounts(t *testing.T) {
	firstSeen := time.Date(2026, 3, 14, 9, 0, 5, 0, time.UTC)
	stored := NewQueryRecord(sampleEvent(), "msg-1", "order-completed", firstSeen)

	later := firstSeen.Add(2 * time.Minute)
	redelivered := sampleEvent()
	redelivered.CustomerName = "Laura S."
	fresh := NewQueryRecord(redelivered, "msg-2", "order-completed", later)

	merged := stored.Merge(fresh)

	if merged.ID != stored.ID {
		t.Fatalf("merge must keep the original record id")
	}
	if merged.Metadata.FirstSeenAt != firstSeen {
		t.Fatalf("merge must keep first seen timestamp")
	}
	if merged.Metadata.ProcessingCount != 2 {
		t.Fatalf("processing count = %d, want 2", merged.Metadata.ProcessingCount)
	}
	if merged.CustomerName != "Laura S." {
		t.Fatalf("latest event data should win, got %q", merged.CustomerName)
	}
	if merged.QueriedAt != firstSeen {
		t.Fatalf("queried at marks the first delivery and must not move")
	}
	if merged.ProcessedAt != later {
		t.Fatalf("processed at should advance on redelivery")
	}
	if merged.Metadata.LastMessageID != "msg-2" {
		t.Fatalf("last message id = %q", merged.Metadata.LastMessageID)
	}
}

func TestMergeRepeatedDeliveriesConverge(t *testing.T) {
	now := time.Now().UTC()
	record := NewQueryRecord(sampleEvent(), "msg-1", "order-completed", now)

	for i := 2; i <= 5; i++ {
		fresh := NewQueryRecord(sampleEvent(), "msg-n", "order-completed", now.Add(time.Duration(i)*time.Second))
		record = record.Merge(fresh)
		if record.Metadata.ProcessingCount != i {
			t.Fatalf("delivery %d: count = %d", i, record.Metadata.ProcessingCount)
		}
	}
	if record.OrderID != 101 || record.Amount != "149.9" {
		t.Fatalf("record drifted: %+v", record)
	}
}
