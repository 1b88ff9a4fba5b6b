package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "innkeeper/internal/app/outbox"
)

type stubStore struct {
	entries []*EventDocument
	sent    []string
	failed  []string
	reasons []string
}

func (s *stubStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	s.entries = append(s.entries, &EventDocument{
		ID:         record.Name + "-id",
		Name:       record.Name,
		Aggregate:  record.Aggregate,
		Payload:    record.Payload,
		Headers:    record.Headers,
		OccurredAt: record.OccurredAt,
		Status:     StatusPending,
	})
	return nil
}

func (s *stubStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	for _, doc := range s.entries {
		if doc.Status == StatusPending && doc.ClaimedBy == "" {
			doc.ClaimedBy = workerID
			return doc, nil
		}
	}
	return nil, nil
}

func (s *stubStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	for _, doc := range s.entries {
		if doc.ID == id {
			doc.Status = StatusSent
		}
	}
	return nil
}

func (s *stubStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	s.failed = append(s.failed, id)
	s.reasons = append(s.reasons, reason)
	for _, doc := range s.entries {
		if doc.ID == id {
			doc.ClaimedBy = ""
			doc.Attempts++
			doc.NextRetry = retryAt
		}
	}
	return nil
}

type capturedMessage struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type stubProducer struct {
	messages []capturedMessage
	err      error
}

func (p *stubProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, capturedMessage{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func seedRecord(t *testing.T, store *stubStore, name, aggregate string) {
	t.Helper()
	require.NoError(t, store.Add(context.Background(), appoutbox.EventRecord{
		Name:       name,
		Aggregate:  aggregate,
		Payload:    []byte(`{"reservationId":"rsv-1"}`),
		OccurredAt: time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC),
	}))
}

func TestWorkerPublishesCloudEvent(t *testing.T) {
	store := &stubStore{}
	producer := &stubProducer{}
	seedRecord(t, store, "reservation.created", "rsv-1")

	w := &Worker{Store: store, Producer: producer, ID: "worker-1"}
	require.NoError(t, w.processOnce(context.Background()))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "reservation.events.v1", msg.topic)
	assert.Equal(t, "rsv-1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, "reservation.created.v1", envelope["type"])
	assert.Equal(t, "app://innkeeper", envelope["source"])
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rsv-1", data["reservationId"])

	assert.Equal(t, []string{"reservation.created-id"}, store.sent)
}

func TestWorkerTopicPrefix(t *testing.T) {
	store := &stubStore{}
	producer := &stubProducer{}
	seedRecord(t, store, "payment.recorded", "pay-1")

	w := &Worker{Store: store, Producer: producer, TopicPrefix: "staging.", ID: "worker-1"}
	require.NoError(t, w.processOnce(context.Background()))

	require.Len(t, producer.messages, 1)
	assert.Equal(t, "staging.payment.events.v1", producer.messages[0].topic)
}

func TestWorkerMarksFailureForRetry(t *testing.T) {
	store := &stubStore{}
	producer := &stubProducer{err: errors.New("broker unavailable")}
	seedRecord(t, store, "reservation.created", "rsv-1")

	w := &Worker{Store: store, Producer: producer, ID: "worker-1"}
	require.NoError(t, w.processOnce(context.Background()))

	assert.Empty(t, store.sent)
	require.Len(t, store.failed, 1)
	assert.Contains(t, store.reasons[0], "broker unavailable")
	assert.Equal(t, 1, store.entries[0].Attempts)
	assert.False(t, store.entries[0].NextRetry.IsZero())
}

func TestWorkerMalformedPayloadDoesNotReachBroker(t *testing.T) {
	store := &stubStore{}
	store.entries = append(store.entries, &EventDocument{
		ID:      "bad-1",
		Name:    "reservation.created",
		Payload: []byte("not-json"),
		Status:  StatusPending,
	})
	producer := &stubProducer{}

	w := &Worker{Store: store, Producer: producer, ID: "worker-1"}
	require.NoError(t, w.processOnce(context.Background()))

	assert.Empty(t, producer.messages)
	assert.Equal(t, []string{"bad-1"}, store.failed)
}

func TestWorkerIdleTickIsQuiet(t *testing.T) {
	store := &stubStore{}
	producer := &stubProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "worker-1"}
	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, producer.messages)
	assert.Empty(t, store.sent)
}

func TestWorkerRequiresDependencies(t *testing.T) {
	w := &Worker{}
	err := w.Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}

func TestWorkerBackoffSchedule(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, 10 * time.Second}}

	first := w.nextRetry(0)
	second := w.nextRetry(1)
	exhausted := w.nextRetry(5)

	assert.WithinDuration(t, time.Now().Add(time.Second), first, 200*time.Millisecond)
	assert.WithinDuration(t, time.Now().Add(10*time.Second), second, 200*time.Millisecond)
	assert.WithinDuration(t, time.Now().Add(10*time.Second), exhausted, 200*time.Millisecond)
}
