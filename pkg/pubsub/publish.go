package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// PublishJSON marshals payload and publishes it on pub, blocking until the
// server acknowledges or ctx expires. Returns the server message ID.
func PublishJSON(ctx context.Context, pub *pubsub.Publisher, payload any, attrs map[string]string) (string, error) {
	if pub == nil {
		return "", errors.New("publisher is nil")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}

	result := pub.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	if result == nil {
		return "", errors.New("publisher returned nil result")
	}
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("waiting for publish ack: %w", err)
	}
	return id, nil
}
