package outbox

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers one topic's worth of outbox messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, batch []Message) error
}

// topicWriter is the part of *kafka.Writer the producer uses.
type topicWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes outbox messages, keeping one writer per topic. Messages are keyed by their
// partition key (the user ID for report events) so one user's runs stay ordered on a partition.
type KafkaProducer struct {
	newWriter func(topic string) topicWriter
	now       func() time.Time

	mu      sync.Mutex
	writers map[string]topicWriter
}

// NewKafkaProducer creates a KafkaProducer writing to brokers.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return newProducer(func(topic string) topicWriter {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchTimeout: 50 * time.Millisecond,
		}
	})
}

func newProducer(newWriter func(topic string) topicWriter) *KafkaProducer {
	return &KafkaProducer{
		newWriter: newWriter,
		now:       time.Now,
		writers:   make(map[string]topicWriter),
	}
}

// Publish writes batch to topic in one call. Either every message is acknowledged or an error is
// returned for the whole batch.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, batch []Message) error {
	if len(batch) == 0 {
		return nil
	}
	records := make([]kafka.Message, 0, len(batch))
	for _, msg := range batch {
		records = append(records, p.record(msg))
	}
	return p.writer(topic).WriteMessages(ctx, records...)
}

func (p *KafkaProducer) record(msg Message) kafka.Message {
	return kafka.Message{
		Key:   []byte(msg.PartitionKey),
		Value: []byte(msg.Payload),
		Time:  p.now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(msg.EventType)},
			{Key: "tenant_id", Value: []byte(msg.TenantID)},
			{Key: "aggregate_type", Value: []byte(msg.AggregateType)},
			{Key: "aggregate_id", Value: []byte(msg.AggregateID)},
			{Key: "event_id", Value: []byte(strconv.FormatInt(msg.EventID, 10))},
		},
	}
}

func (p *KafkaProducer) writer(topic string) topicWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.writers[topic]
	if !ok {
		w = p.newWriter(topic)
		p.writers[topic] = w
	}
	return w
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, w := range p.writers {
		errs = append(errs, w.Close())
		delete(p.writers, topic)
	}
	return errors.Join(errs...)
}
