package queries

import (
	"context"
	"errors"
	"time"
)

// ErrRecordNotFound is returned by stores when no record matches.
var ErrRecordNotFound = errors.New("query record not found")

// UpsertResult reports whether the upsert created a new record or merged
// into an existing one, along with the stored state.
type UpsertResult struct {
	Created bool
	Record  QueryRecord
}

// Store persists materialized query records keyed by order ID.
type Store interface {
	// Upsert inserts the record when no row exists for its order ID and
	// merges into the existing row otherwise. Implementations must converge
	// under concurrent deliveries of the same order.
	Upsert(ctx context.Context, record QueryRecord) (UpsertResult, error)
	FindByOrderID(ctx context.Context, orderID int64) (*QueryRecord, error)
	List(ctx context.Context, limit, offset int) ([]QueryRecord, error)
	Totals(ctx context.Context) (*Totals, error)
	EnsureIndexes(ctx context.Context) error
}

// Totals aggregates the materialized view for the metrics endpoint.
type Totals struct {
	Records         int64            `json:"records"`
	Deliveries      int64            `json:"deliveries"`
	ByPaymentForm   map[string]int64 `json:"by_payment_form"`
	ByStatus        map[string]int64 `json:"by_status"`
	LastProcessedAt *time.Time       `json:"last_processed_at,omitempty"`
}
