package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// RedisDeadLetter stores exhausted messages on a Redis list for manual
// inspection and replay.
type RedisDeadLetter struct {
	client *redis.Client
	list   string
}

// NewRedisDeadLetter creates a dead-letter sink on the given list key
func NewRedisDeadLetter(client *redis.Client, list string) *RedisDeadLetter {
	return &RedisDeadLetter{client: client, list: list}
}

// Push appends the dead letter to the list
func (s *RedisDeadLetter) Push(ctx context.Context, dl *core.DeadLetter) error {
	payload, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}
	if err := s.client.LPush(ctx, s.list, payload).Err(); err != nil {
		return fmt.Errorf("failed to push dead letter: %w", err)
	}
	return nil
}

// LogDeadLetter logs dead letters instead of storing them. Used by the
// one-shot CLI.
type LogDeadLetter struct {
	logger *zap.Logger
}

// NewLogDeadLetter creates a log-only dead-letter sink
func NewLogDeadLetter(logger *zap.Logger) *LogDeadLetter {
	return &LogDeadLetter{logger: logger}
}

// Push logs the dead letter
func (s *LogDeadLetter) Push(ctx context.Context, dl *core.DeadLetter) error {
	s.logger.Error("dead letter",
		zap.String("email_id", dl.EmailID),
		zap.String("reason", dl.Reason),
		zap.Int("attempts", dl.Attempts))
	return nil
}
