package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/metrics"
)

type stubQueryService struct {
	result *UpsertResult
	err    error
	calls  int
}

func (s *stubQueryService) ProcessEvent(ctx context.Context, data []byte, messageID string) (*UpsertResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubQueryService) GetByOrderID(ctx context.Context, orderID int64) (*QueryRecord, error) {
	return nil, ErrRecordNotFound
}

func (s *stubQueryService) List(ctx context.Context, limit, offset int) ([]QueryRecord, error) {
	return nil, nil
}

func (s *stubQueryService) Totals(ctx context.Context) (*Totals, error) {
	return &Totals{}, nil
}

func newTestConsumer(svc Service) (*Consumer, *[]time.Duration) {
	var sleeps []time.Duration
	consumer := &Consumer{
		svc:               svc,
		logg:              logger.New(logger.Options{Level: zerolog.Disabled}),
		metrics:           metrics.NewConsumerMetrics(nil),
		storeBackoff:      time.Second,
		unexpectedBackoff: 5 * time.Second,
		sleep:             func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	return consumer, &sleeps
}

func TestProcess_AcksAfterSuccessfulMaterialization(t *testing.T) {
	svc := &stubQueryService{result: &UpsertResult{Created: true}}
	consumer, sleeps := newTestConsumer(svc)

	result := consumer.process(context.Background(), &pubsub.Message{ID: "m1", Data: []byte("{}")})
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("no backoff expected on success")
	}
}

func TestProcess_NacksInvalidEventsWithoutBackoff(t *testing.T) {
	svc := &stubQueryService{err: pkgerrors.New(pkgerrors.CodeValidation, "malformed event payload")}
	consumer, sleeps := newTestConsumer(svc)

	result := consumer.process(context.Background(), &pubsub.Message{ID: "m1", Data: []byte("nope")})
	if !result.nack {
		t.Fatalf("invalid event must not be acked")
	}
	if len(*sleeps) != 0 {
		t.Fatalf("invalid events should not trigger backoff")
	}
}

func TestProcess_StoreErrorsBackOffShort(t *testing.T) {
	svc := &stubQueryService{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("down"), "materialize query record")}
	consumer, sleeps := newTestConsumer(svc)

	result := consumer.process(context.Background(), &pubsub.Message{ID: "m1", Data: []byte("{}")})
	if !result.nack {
		t.Fatalf("store failure must nack for redelivery")
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != time.Second {
		t.Fatalf("expected 1s backoff, got %v", *sleeps)
	}
}

func TestProcess_UnexpectedErrorsBackOffLonger(t *testing.T) {
	svc := &stubQueryService{err: errors.New("panic adjacent")}
	consumer, sleeps := newTestConsumer(svc)

	result := consumer.process(context.Background(), &pubsub.Message{ID: "m1", Data: []byte("{}")})
	if !result.nack {
		t.Fatalf("unexpected failure must nack for redelivery")
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 5*time.Second {
		t.Fatalf("expected 5s backoff, got %v", *sleeps)
	}
}
