package outbox

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthreport/internal/events"
	"example.com/healthreport/internal/report"
)

type memoryStore struct {
	pending   []Message
	published []int64
	failed    map[int64]string
}

func (s *memoryStore) Claim(_ context.Context, limit, _ int) ([]Message, error) {
	if len(s.pending) < limit {
		limit = len(s.pending)
	}
	batch := s.pending[:limit]
	s.pending = s.pending[limit:]
	return batch, nil
}

func (s *memoryStore) MarkPublished(_ context.Context, ids []int64) error {
	s.published = append(s.published, ids...)
	return nil
}

func (s *memoryStore) MarkFailed(_ context.Context, ids []int64, reason string) error {
	if s.failed == nil {
		s.failed = make(map[int64]string)
	}
	for _, id := range ids {
		s.failed[id] = reason
	}
	return nil
}

type recordingPublisher struct {
	topics   []string
	messages []Message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, batch []Message) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.messages = append(p.messages, batch...)
	return nil
}

func reportMessage(t *testing.T, id int64) Message {
	t.Helper()
	payload, err := events.NewReportGenerated(report.RunSummary{
		ID:          "run-1",
		TenantID:    "tenant-1",
		UserID:      "user-1",
		Records:     10,
		Sheets:      3,
		FirstMonth:  "2024-01",
		LastMonth:   "2024-03",
		Timezone:    "UTC",
		GeneratedAt: time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC),
	}).Marshal()
	require.NoError(t, err)
	return Message{
		EventID:       id,
		TenantID:      "tenant-1",
		AggregateType: events.ReportRunAggregate,
		AggregateID:   "run-1",
		EventType:     events.ReportGeneratedType,
		Topic:         "report_events",
		PartitionKey:  "user-1",
		Payload:       payload,
	}
}

func quietDispatcher(store Store, p Publisher) *Dispatcher {
	return NewDispatcher(store, p, time.Millisecond, 10, WithLogger(log.New(io.Discard, "", 0)))
}

func TestProcessBatchPublishesByTopic(t *testing.T) {
	store := &memoryStore{pending: []Message{reportMessage(t, 1), reportMessage(t, 2)}}
	writer := &recordingPublisher{}

	require.NoError(t, quietDispatcher(store, writer).ProcessBatch(context.Background()))
	require.Equal(t, []string{"report_events"}, writer.topics)
	require.Len(t, writer.messages, 2)
	require.ElementsMatch(t, []int64{1, 2}, store.published)
	require.Empty(t, store.failed)
}

func TestProcessBatchKeepsFailuresUnpublished(t *testing.T) {
	store := &memoryStore{pending: []Message{reportMessage(t, 7)}}
	writer := &recordingPublisher{err: errors.New("broker unavailable")}

	require.NoError(t, quietDispatcher(store, writer).ProcessBatch(context.Background()))
	require.Empty(t, store.published)
	require.Equal(t, "broker unavailable", store.failed[7])
}

func TestProcessBatchRejectsInvalidPayload(t *testing.T) {
	bad := reportMessage(t, 3)
	bad.Payload = []byte(`{"run_id": ""}`)
	store := &memoryStore{pending: []Message{bad}}
	writer := &recordingPublisher{}

	require.NoError(t, quietDispatcher(store, writer).ProcessBatch(context.Background()))
	require.Empty(t, writer.messages)
	require.Contains(t, store.failed, int64(3))
}

func TestProcessBatchIdle(t *testing.T) {
	store := &memoryStore{}
	writer := &recordingPublisher{}
	require.NoError(t, quietDispatcher(store, writer).ProcessBatch(context.Background()))
	require.Empty(t, writer.topics)
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := quietDispatcher(&memoryStore{}, &recordingPublisher{})
	go d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestValidatePayload(t *testing.T) {
	msg := reportMessage(t, 1)
	require.NoError(t, ValidatePayload(msg.EventType, msg.Payload))

	err := ValidatePayload("report.deleted", msg.Payload)
	require.ErrorIs(t, err, ErrUnknownEventType)

	err = ValidatePayload(msg.EventType, []byte(`{"run_id":"x","extra":true}`))
	require.ErrorIs(t, err, ErrInvalidPayload)

	err = ValidatePayload(msg.EventType, []byte(`not json`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}
