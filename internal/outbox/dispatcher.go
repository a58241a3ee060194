package outbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Dispatcher drains the outbox and delivers events to Kafka.
type Dispatcher struct {
	store            Store
	producer         Publisher
	pollInterval     time.Duration
	batchSize        int
	maxAttempts      int
	logger           *log.Logger
	shutdownComplete chan struct{}
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMaxAttempts bounds how often a failing event is retried.
func WithMaxAttempts(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(store Store, producer Publisher, pollInterval time.Duration, batchSize int, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:            store,
		producer:         producer,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		maxAttempts:      10,
		logger:           log.Default(),
		shutdownComplete: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.ProcessBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Printf("outbox dispatcher error: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

// ProcessBatch claims one batch and settles every message in it. Messages that fail stay unpublished
// with their attempt count raised.
func (d *Dispatcher) ProcessBatch(ctx context.Context) error {
	start := time.Now()

	messages, err := d.store.Claim(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}
	defer batchDuration.Observe(time.Since(start).Seconds())

	published := make([]int64, 0, len(messages))
	for topic, batch := range groupByTopic(messages) {
		if err := d.deliver(ctx, topic, batch); err != nil {
			d.logger.Printf("outbox: delivery failure topic=%s: %v", topic, err)
			failedCounter.WithLabelValues(topic).Add(float64(len(batch)))
			if markErr := d.store.MarkFailed(ctx, eventIDs(batch), err.Error()); markErr != nil {
				return markErr
			}
			continue
		}
		deliveredCounter.Add(float64(len(batch)))
		published = append(published, eventIDs(batch)...)
	}

	if len(published) == 0 {
		return nil
	}
	return d.store.MarkPublished(ctx, published)
}

func (d *Dispatcher) deliver(ctx context.Context, topic string, batch []Message) error {
	for _, msg := range batch {
		if err := ValidatePayload(msg.EventType, msg.Payload); err != nil {
			return fmt.Errorf("event %d: %w", msg.EventID, err)
		}
	}
	return d.producer.Publish(ctx, topic, batch)
}

func groupByTopic(messages []Message) map[string][]Message {
	out := make(map[string][]Message)
	for _, msg := range messages {
		out[msg.Topic] = append(out[msg.Topic], msg)
	}
	return out
}

func eventIDs(messages []Message) []int64 {
	ids := make([]int64, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.EventID)
	}
	return ids
}
