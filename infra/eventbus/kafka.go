package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/gamewallet/wallet/pkg/eventbus"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaEventBus publishes every event to one topic, keyed by order code so events
// of one order stay ordered within a partition.
type KafkaEventBus struct {
	brokers       []string
	topic         string
	group         string
	writer        *kafka.Writer
	dialer        *kafka.Dialer
	typeFactories map[string]func() events.Event
	logger        *slog.Logger

	readersMtx sync.Mutex
	readers    []*kafka.Reader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// orderKeyed is implemented by events that carry an order code.
type orderKeyed interface {
	OrderKey() int64
}

// KafkaOption tunes the connection of a KafkaEventBus.
type KafkaOption func(*kafkaOptions)

type kafkaOptions struct {
	saslUsername string
	saslPassword string
}

// WithSASLPlain authenticates to the brokers with SASL/PLAIN.
func WithSASLPlain(username, password string) KafkaOption {
	return func(o *kafkaOptions) {
		o.saslUsername = username
		o.saslPassword = password
	}
}

func saslMechanism(o kafkaOptions) (sasl.Mechanism, error) {
	username := strings.TrimSpace(o.saslUsername)
	password := strings.TrimSpace(o.saslPassword)
	if username == "" && password == "" {
		return nil, nil
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("kafka event bus: sasl username and password are required")
	}
	return plain.Mechanism{Username: username, Password: password}, nil
}

// NewWithKafka creates a Kafka-backed event bus.
func NewWithKafka(
	brokers []string,
	topic, group string,
	types map[string]func() events.Event,
	logger *slog.Logger,
	opts ...KafkaOption,
) (*KafkaEventBus, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafka event bus: brokers and topic are required")
	}
	var o kafkaOptions
	for _, opt := range opts {
		opt(&o)
	}
	mechanism, err := saslMechanism(o)
	if err != nil {
		return nil, err
	}
	dialer := &kafka.Dialer{Timeout: 5 * time.Second, SASLMechanism: mechanism}
	var transport kafka.RoundTripper
	if mechanism != nil {
		transport = &kafka.Transport{SASL: mechanism}
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &KafkaEventBus{
		brokers: brokers,
		topic:   topic,
		group:   group,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
			Transport:              transport,
		},
		dialer:        dialer,
		typeFactories: types,
		logger:        logger.With("bus", "kafka", "topic", topic),
		ctx:           ctx,
		cancel:        cancel,
	}

	conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		cancel()
		return nil, fmt.Errorf("kafka event bus: dial %s: %w", brokers[0], err)
	}
	_ = conn.Close()

	bus.logger.Info("🚀 Kafka event bus initialized",
		"brokers", brokers, "group_id", group, "sasl_enabled", mechanism != nil)
	return bus, nil
}

// Emit writes the event envelope to the topic.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	envBytes, err := encode(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}
	msg := kafka.Message{
		Value: envBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type())},
		},
		Time: time.Now().UTC(),
	}
	if k, ok := event.(orderKeyed); ok {
		msg.Key = []byte(strconv.FormatInt(k.OrderKey(), 10))
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("kafka event bus: emit failed: %w", err)
	}
	return nil
}

// Register starts a consumer-group reader delivering events of eventType to handler.
func (b *KafkaEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		Topic:    b.topic,
		GroupID:  b.group + "." + eventType,
		Dialer:   b.dialer,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	b.readersMtx.Lock()
	b.readers = append(b.readers, reader)
	b.readersMtx.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			msg, err := reader.FetchMessage(b.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || b.ctx.Err() != nil {
					return
				}
				b.logger.Error("failed to fetch message", "error", err, "event_type", eventType)
				time.Sleep(time.Second)
				continue
			}
			b.dispatch(eventType, msg, handler)
			if err := reader.CommitMessages(b.ctx, msg); err != nil && b.ctx.Err() == nil {
				b.logger.Error("failed to commit message", "error", err, "offset", msg.Offset)
			}
		}
	}()
}

func (b *KafkaEventBus) dispatch(eventType string, msg kafka.Message, handler eventbus.HandlerFunc) {
	evt, typ, err := decode(msg.Value, b.typeFactories)
	if typ != eventType {
		return
	}
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "event_type", typ)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panic recovered", "panic", r, "event_type", typ)
		}
	}()
	if err := handler(b.ctx, evt); err != nil {
		b.logger.Error("handler error", "error", err, "event_type", typ, "offset", msg.Offset)
	}
}

// Close stops readers and flushes the writer.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	b.readersMtx.Lock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.readersMtx.Unlock()
	b.wg.Wait()
	return b.writer.Close()
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
