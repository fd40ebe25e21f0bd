package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jewel109/mobiledoor-api/pkg/config"
	"github.com/jewel109/mobiledoor-api/pkg/logger"
	"github.com/jewel109/mobiledoor-api/pkg/outbox"
)

var (
	errBrokersRequired = errors.New("kafka brokers are required")
	errTopicRequired   = errors.New("kafka orders topic is required")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type partitionReader func(ctx context.Context, broker, topic string) (int, error)

// Producer writes outbox messages to Kafka, keyed by aggregate id so every
// event of one order lands on the same partition.
type Producer struct {
	writer     messageWriter
	brokers    []string
	topic      string
	partitions partitionReader
}

// NewProducer builds a synchronous writer. The topic is set per message so a
// single writer can serve any topic the registry resolves.
func NewProducer(cfg config.KafkaConfig, logg *logger.Logger) (*Producer, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	if len(brokers) == 0 {
		return nil, errBrokersRequired
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errTopicRequired
	}

	p := &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		brokers:    brokers,
		topic:      cfg.Topic,
		partitions: readPartitions,
	}

	if logg != nil {
		ctx := logg.WithFields(context.Background(), map[string]any{
			"brokers": strings.Join(brokers, ","),
			"topic":   cfg.Topic,
		})
		logg.Info(ctx, "kafka producer initialized")
	}
	return p, nil
}

// Publish writes msg and blocks until the brokers ack it.
func (p *Producer) Publish(ctx context.Context, msg outbox.Message) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka producer not initialized")
	}
	topic := strings.TrimSpace(msg.Topic)
	if topic == "" {
		return errTopicRequired
	}
	km := kafka.Message{
		Topic:   topic,
		Value:   msg.Data,
		Headers: headers(msg.Attributes),
		Time:    time.Now().UTC(),
	}
	if msg.Key != "" {
		km.Key = []byte(msg.Key)
	}
	if err := p.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("kafka write to %s: %w", topic, err)
	}
	return nil
}

// Ping checks that at least one broker answers and knows the orders topic.
func (p *Producer) Ping(ctx context.Context) error {
	if p == nil || p.partitions == nil {
		return errors.New("kafka producer not initialized")
	}
	var errs []error
	for _, broker := range p.brokers {
		n, err := p.partitions(ctx, broker, p.topic)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", broker, err))
			continue
		}
		if n == 0 {
			return fmt.Errorf("topic %q has no partitions", p.topic)
		}
		return nil
	}
	return fmt.Errorf("no kafka broker reachable: %w", errors.Join(errs...))
}

// Close flushes pending writes.
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func headers(attrs map[string]string) []kafka.Header {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		out = append(out, kafka.Header{Key: k, Value: []byte(attrs[k])})
	}
	return out
}

func readPartitions(ctx context.Context, broker, topic string) (int, error) {
	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", broker)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	parts, err := conn.ReadPartitions(topic)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, fmt.Errorf("timed out reading partitions: %w", err)
		}
		return 0, err
	}
	return len(parts), nil
}
