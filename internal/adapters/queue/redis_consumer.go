// Package queue consumes raw inbound messages from a Redis stream.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
	"github.com/tjsasakifln/Inbound/internal/metrics"
	"github.com/tjsasakifln/Inbound/internal/worker"
)

// Consumer reads inbound messages from a Redis stream consumer group
// and hands them to the worker pool. Entries are acknowledged only
// after the pipeline settles them, giving at-least-once delivery.
type Consumer struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	pool     *worker.Pool
	logger   *zap.Logger
}

// NewConsumer creates a consumer bound to a stream and group.
func NewConsumer(client *redis.Client, stream, group, consumer string, pool *worker.Pool, logger *zap.Logger) *Consumer {
	return &Consumer{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		pool:     pool,
		logger:   logger,
	}
}

// Run creates the consumer group if needed and blocks reading entries
// until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("consuming inbound stream",
		zap.String("stream", c.stream),
		zap.String("group", c.group),
		zap.String("consumer", c.consumer))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.logger.Error("failed to read from stream", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, entry := range stream.Messages {
				if err := c.dispatch(ctx, entry); err != nil {
					return err
				}
			}
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, entry redis.XMessage) error {
	msg, err := decodeEntry(entry)
	if err != nil {
		// Undecodable entries can never succeed: settle them
		// immediately instead of letting them redeliver forever.
		c.logger.Warn("dropping malformed stream entry",
			zap.String("entry_id", entry.ID),
			zap.Error(err))
		metrics.ProcessingTotal.WithLabelValues(string(core.TaskRejected)).Inc()
		return c.ack(ctx, entry.ID)
	}

	return c.pool.Submit(ctx, worker.Job{
		Message: msg,
		Ack: func(ctx context.Context) error {
			return c.ack(ctx, entry.ID)
		},
	})
}

func (c *Consumer) ack(ctx context.Context, entryID string) error {
	if err := c.client.XAck(ctx, c.stream, c.group, entryID).Err(); err != nil {
		return fmt.Errorf("failed to ack entry %s: %w", entryID, err)
	}
	return nil
}

func decodeEntry(entry redis.XMessage) (*core.InboundMessage, error) {
	raw, ok := entry.Values["data"]
	if !ok {
		return nil, fmt.Errorf("entry %s has no data field", entry.ID)
	}
	data, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("entry %s data field is not a string", entry.ID)
	}

	var msg core.InboundMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", entry.ID, err)
	}
	return &msg, nil
}
