package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus publishes to one Redis Stream and consumes it through a consumer group.
type RedisEventBus struct {
	client        *redis.Client
	stream        string
	group         string
	typeFactories map[string]func() events.Event
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis creates a new Redis-backed event bus and ensures the consumer group exists.
func NewWithRedis(
	url, stream, group string,
	types map[string]func() events.Event,
	logger *slog.Logger,
) (*RedisEventBus, error) {
	if url == "" || stream == "" || group == "" {
		return nil, fmt.Errorf("redis event bus: url, stream, and group are required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:        client,
		stream:        stream,
		group:         group,
		typeFactories: types,
		logger:        logger.With("bus", "redis", "stream", stream),
		ctx:           ctx,
		cancel:        cancel,
	}

	if err := bus.ensureGroup(group); err != nil {
		cancel()
		return nil, err
	}
	return bus, nil
}

// ensureGroup creates the stream and consumer group, tolerating an existing group.
func (b *RedisEventBus) ensureGroup(group string) error {
	err := b.client.XGroupCreateMkStream(b.ctx, b.stream, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("redis event bus: create group %s: %w", group, err)
	}
	return nil
}

// Emit appends the event envelope to the stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	envBytes, err := encode(event)
	if err != nil {
		b.logger.Error("failed to marshal event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: %w", err)
	}

	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(envBytes)},
	}).Err(); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}

	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Register starts a consumer for the group that calls handler for events of eventType.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	consumer := fmt.Sprintf("consumer-%s-%d", eventType, time.Now().UnixNano())
	group := b.group + ":" + eventType
	if err := b.ensureGroup(group); err != nil {
		b.logger.Error("failed to create consumer group", "error", err, "group", group)
	}
	b.logger.Info("registering handler", "event_type", eventType, "consumer", consumer)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for b.ctx.Err() == nil {
			res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{b.stream, ">"},
				Count:    10,
				Block:    5 * time.Second,
			}).Result()
			if err != nil {
				if b.ctx.Err() != nil {
					return
				}
				if !errors.Is(err, redis.Nil) {
					b.logger.Error("error reading from stream", "error", err, "consumer", consumer)
					time.Sleep(time.Second)
				}
				continue
			}
			for _, stream := range res {
				for _, msg := range stream.Messages {
					b.dispatch(group, eventType, msg, handler)
				}
			}
		}
	}()
}

func (b *RedisEventBus) dispatch(group, eventType string, msg redis.XMessage, handler eventbus.HandlerFunc) {
	defer func() {
		if err := b.client.XAck(b.ctx, b.stream, group, msg.ID).Err(); err != nil {
			b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
		}
	}()

	raw, ok := msg.Values["event"].(string)
	if !ok {
		return
	}
	evt, typ, err := decode([]byte(raw), b.typeFactories)
	if typ != eventType {
		return
	}
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "event_type", typ)
		b.pushToDLQ(msg.Values)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panic recovered", "panic", r, "event_type", typ)
			b.pushToDLQ(msg.Values)
		}
	}()
	if err := handler(b.ctx, evt); err != nil {
		b.logger.Error("handler error", "error", err, "event_type", typ)
		b.pushToDLQ(msg.Values)
	}
}

// pushToDLQ keeps the raw message on a side stream for inspection or replay.
func (b *RedisEventBus) pushToDLQ(values map[string]any) {
	dlqStream := b.stream + "-DLQ"
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{
		Stream: dlqStream,
		Values: values,
	}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlqStream)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlqStream)
}

// Close stops consumers and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
