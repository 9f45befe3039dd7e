package queries

import (
	"context"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/events"
	"github.com/rvaldezm/orderstream/pkg/logger"
	"github.com/rvaldezm/orderstream/pkg/metrics"
)

// Consumer pulls completed-order events and materializes them one at a time.
// Messages are acked only after the record is stored; everything else is
// nacked so Pub/Sub redelivers.
type Consumer struct {
	svc               Service
	subscription      *pubsub.Subscriber
	logg              *logger.Logger
	metrics           *metrics.ConsumerMetrics
	storeBackoff      time.Duration
	unexpectedBackoff time.Duration
	sleep             func(time.Duration)
}

// ConsumerParams collects the dependencies for NewConsumer.
type ConsumerParams struct {
	Service           Service
	Subscription      *pubsub.Subscriber
	Logger            *logger.Logger
	Metrics           *metrics.ConsumerMetrics
	StoreBackoff      time.Duration
	UnexpectedBackoff time.Duration
}

// NewConsumer constructs a consumer that watches the provided subscription.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Service == nil {
		return nil, errors.New("query service is required")
	}
	if params.Subscription == nil {
		return nil, errors.New("completed subscription is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	storeBackoff := params.StoreBackoff
	if storeBackoff <= 0 {
		storeBackoff = time.Second
	}
	unexpectedBackoff := params.UnexpectedBackoff
	if unexpectedBackoff <= 0 {
		unexpectedBackoff = 5 * time.Second
	}
	return &Consumer{
		svc:               params.Service,
		subscription:      params.Subscription,
		logg:              params.Logger,
		metrics:           params.Metrics,
		storeBackoff:      storeBackoff,
		unexpectedBackoff: unexpectedBackoff,
		sleep:             time.Sleep,
	}, nil
}

// Run processes messages until the context is canceled or the subscription
// errors. Ordering matters for merge counters, so only one message is
// outstanding at a time.
func (c *Consumer) Run(ctx context.Context) error {
	c.subscription.ReceiveSettings.MaxOutstandingMessages = 1
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	start := time.Now()
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"topic":      events.TopicOrderCompleted,
	})

	outcome, err := c.svc.ProcessEvent(logCtx, msg.Data, msg.ID)
	c.metrics.ObserveDuration(events.TopicOrderCompleted, time.Since(start))

	if err != nil {
		return c.handleError(logCtx, err)
	}

	c.metrics.IncProcessed(events.TopicOrderCompleted)
	if !outcome.Created {
		c.metrics.IncDuplicate()
	}
	return processResult{ack: true}
}

// handleError sorts failures into redelivery lanes: invalid payloads are
// dropped back to the subscription without backoff, store failures wait a
// short beat, anything unexpected waits longer before the next attempt.
func (c *Consumer) handleError(ctx context.Context, err error) processResult {
	typed := pkgerrors.As(err)
	if typed != nil && typed.Code() == pkgerrors.CodeValidation {
		c.logg.Error(ctx, "dropping invalid event", err)
		c.metrics.IncInvalid()
		return processResult{nack: true}
	}

	c.metrics.IncFailed(events.TopicOrderCompleted)
	if typed != nil && typed.Code() == pkgerrors.CodeDependency {
		c.logg.Error(ctx, "store unavailable, backing off", err)
		c.sleep(c.storeBackoff)
		return processResult{nack: true}
	}

	c.logg.Error(ctx, "unexpected consumer error, backing off", err)
	c.sleep(c.unexpectedBackoff)
	return processResult{nack: true}
}
