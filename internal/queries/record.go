package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/rvaldezm/orderstream/pkg/enums"
	"github.com/rvaldezm/orderstream/pkg/events"
)

// QueryRecord is the materialized view row served by the query API. Order ID
// is the idempotency key; the record ID is synthetic and assigned once.
type QueryRecord struct {
	ID             string         `bson:"_id" json:"id"`
	OrderID        int64          `bson:"order_id" json:"order_id"`
	CustomerName   string         `bson:"customer_name" json:"customer_name"`
	PaymentID      int64          `bson:"payment_id" json:"payment_id"`
	Amount         string         `bson:"amount" json:"amount"`
	PaymentForm    string         `bson:"payment_form" json:"payment_form"`
	PaymentMethod  int64          `bson:"payment_method" json:"payment_method"`
	EventTimestamp time.Time      `bson:"event_timestamp" json:"event_timestamp"`
	QueriedAt      time.Time      `bson:"queried_at" json:"queried_at"`
	ProcessedAt    time.Time      `bson:"processed_at" json:"processed_at"`
	Status         string         `bson:"status" json:"status"`
	Metadata       RecordMetadata `bson:"metadata" json:"metadata"`
}

// RecordMetadata tracks how a record was materialized across redeliveries.
type RecordMetadata struct {
	ProcessingCount int       `bson:"processing_count" json:"processing_count"`
	FirstSeenAt     time.Time `bson:"first_seen_at" json:"first_seen_at"`
	LastMessageID   string    `bson:"last_message_id,omitempty" json:"last_message_id,omitempty"`
	SourceTopic     string    `bson:"source_topic,omitempty" json:"source_topic,omitempty"`
}

// NewQueryRecord materializes a fresh record from a completed-order event.
func NewQueryRecord(event events.OrderCompleted, messageID, topic string, now time.Time) QueryRecord {
	method := enums.MapPaymentMethodText(event.PaymentForm)
	return QueryRecord{
		ID:             uuid.NewString(),
		OrderID:        event.OrderID,
		CustomerName:   event.CustomerName,
		PaymentID:      event.PaymentID,
		Amount:         event.Amount.String(),
		PaymentForm:    event.PaymentForm,
		PaymentMethod:  int64(method),
		EventTimestamp: event.Timestamp,
		QueriedAt:      now,
		ProcessedAt:    now,
		Status:         enums.QueryRecordStatusProcessed.String(),
		Metadata: RecordMetadata{
			ProcessingCount: 1,
			FirstSeenAt:     now,
			LastMessageID:   messageID,
			SourceTopic:     topic,
		},
	}
}

// Merge folds a freshly materialized record into this stored one. The fresh
// event data wins; the stored ID and the first-seen timestamps never change,
// only ProcessedAt advances.
func (r QueryRecord) Merge(fresh QueryRecord) QueryRecord {
	merged := fresh
	merged.ID = r.ID
	merged.QueriedAt = r.QueriedAt
	merged.Metadata.ProcessingCount = r.Metadata.ProcessingCount + 1
	merged.Metadata.FirstSeenAt = r.Metadata.FirstSeenAt
	if merged.Metadata.SourceTopic == "" {
		merged.Metadata.SourceTopic = r.Metadata.SourceTopic
	}
	return merged
}
