// Package outbox persists and delivers domain events to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUnknownEventType is returned for events without a registered schema.
	ErrUnknownEventType = errors.New("no schema registered for event type")
	// ErrInvalidPayload is returned when a payload does not match its schema.
	ErrInvalidPayload = errors.New("event payload does not match schema")
)

// Message represents a row of the outbox table.
type Message struct {
	EventID       int64
	TenantID      string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	PartitionKey  string
	Payload       json.RawMessage
	Attempts      int
}

// Execer is satisfied by pgx transactions, connections and pools.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Enqueue validates msg and inserts it into the outbox using q, typically the transaction that
// stores the aggregate.
func Enqueue(ctx context.Context, q Execer, msg Message) error {
	if err := ValidatePayload(msg.EventType, msg.Payload); err != nil {
		return err
	}
	_, err := q.Exec(ctx,
		`INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
         VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		msg.TenantID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Topic, msg.PartitionKey, msg.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	return nil
}
