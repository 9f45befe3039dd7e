package orders

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/rvaldezm/orderstream/pkg/events"
	"github.com/rvaldezm/orderstream/pkg/pubsub"
)

const attrEventType = "event_type"

type pubsubPublisher struct {
	pub *gcppubsub.Publisher
}

// NewPubSubPublisher wraps the completed-order topic publisher.
func NewPubSubPublisher(client *pubsub.Client) (EventPublisher, error) {
	pub := client.CompletedPublisher()
	if pub == nil {
		return nil, errors.New("completed topic publisher not configured")
	}
	return &pubsubPublisher{pub: pub}, nil
}

func (p *pubsubPublisher) PublishOrderCompleted(ctx context.Context, event events.OrderCompleted) (string, error) {
	return pubsub.PublishJSON(ctx, p.pub, event, map[string]string{
		attrEventType: "order.completed",
	})
}
