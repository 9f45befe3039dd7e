package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/events"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/tracing"
)

// Service materializes completed-order events and serves the query API.
type Service interface {
	ProcessEvent(ctx context.Context, data []byte, messageID string) (*UpsertResult, error)
	GetByOrderID(ctx context.Context, orderID int64) (*QueryRecord, error)
	List(ctx context.Context, limit, offset int) ([]QueryRecord, error)
	Totals(ctx context.Context) (*Totals, error)
}

type service struct {
	store  Store
	logg   *logger.Logger
	tracer tracing.Tracer
	now    func() time.Time
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Store  Store
	Logger *logger.Logger
	Tracer tracing.Tracer
}

// NewService builds a query service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("query store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	tracer := params.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &service{
		store:  params.Store,
		logg:   params.Logger,
		tracer: tracer,
		now:    time.Now,
	}, nil
}

// ProcessEvent decodes, validates and materializes one delivery. Malformed
// payloads and invalid events come back as validation errors so the consumer
// can tell them apart from store failures.
func (s *service) ProcessEvent(ctx context.Context, data []byte, messageID string) (*UpsertResult, error) {
	ctx, span := s.tracer.StartSpan(ctx, "queries.ProcessEvent")
	defer span.End()
	span.SetTag("message_id", messageID)

	var event events.OrderCompleted
	if err := json.Unmarshal(data, &event); err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed event payload")
		span.SetError(wrapped)
		return nil, wrapped
	}
	if err := event.Validate(); err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "event failed validation")
		span.SetError(wrapped)
		return nil, wrapped
	}
	span.SetTag("order_id", event.OrderID)

	ctx = s.logg.WithOrderID(ctx, event.OrderID)
	record := NewQueryRecord(event, messageID, events.TopicOrderCompleted, s.now().UTC())

	result, err := s.store.Upsert(ctx, record)
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "materialize query record")
		span.SetError(wrapped)
		return nil, wrapped
	}

	if result.Created {
		s.logg.Info(ctx, "query record created")
	} else {
		s.logg.Info(ctx, fmt.Sprintf("query record merged (delivery %d)", result.Record.Metadata.ProcessingCount))
	}
	return &result, nil
}

func (s *service) GetByOrderID(ctx context.Context, orderID int64) (*QueryRecord, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	record, err := s.store.FindByOrderID(ctx, orderID)
	if err == ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "query record not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load query record")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]QueryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list query records")
	}
	return records, nil
}

func (s *service) Totals(ctx context.Context) (*Totals, error) {
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate query records")
	}
	return totals, nil
}
