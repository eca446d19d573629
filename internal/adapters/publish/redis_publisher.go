// Package publish provides Publisher and DeadLetterSink implementations.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// RedisPublisher broadcasts lead changes on a Redis pub/sub channel for
// live subscribers such as dashboards.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on the given channel
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the lead as JSON to the channel
func (p *RedisPublisher) Publish(ctx context.Context, lead *core.Lead) error {
	payload, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish lead update: %w", err)
	}
	return nil
}
