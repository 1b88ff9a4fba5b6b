package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

const defaultPollInterval = 500 * time.Millisecond

// Producer publishes a payload to the broker; implemented by the Kafka client.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// cloudEvent is the CloudEvents 1.0 JSON envelope the worker wraps every
// outbox entry in before publishing.
type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
	TraceParent     string          `json:"traceparent,omitempty"`
}

// Worker drains the outbox store into the broker, one entry per tick, with
// bounded retry backoff per entry.
type Worker struct {
	Store       Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	interval := w.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// processOnce claims at most one due entry. Publish failures are recorded on
// the entry for retry and never stop the loop; only store errors propagate.
func (w *Worker) processOnce(ctx context.Context) error {
	doc, err := w.Store.Claim(ctx, w.workerID())
	if err != nil || doc == nil {
		return err
	}
	payload, headers, err := w.envelope(doc)
	if err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return nil
	}
	if err := w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers); err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return nil
	}
	return w.Store.MarkSent(ctx, doc.ID)
}

func (w *Worker) envelope(doc *EventDocument) ([]byte, map[string]string, error) {
	if !json.Valid(doc.Payload) {
		return nil, nil, errors.New("outbox: payload is not valid JSON")
	}
	evt := cloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Type:            doc.Name + ".v1",
		Source:          w.source(),
		Time:            doc.OccurredAt,
		DataContentType: "application/json",
		Data:            doc.Payload,
		TraceParent:     doc.Headers["traceparent"],
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps "reservation.created" to "reservation.events.v1": one topic
// per aggregate kind, versioned, optionally environment-prefixed.
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if len(w.Backoff) == 0 {
		return time.Now().Add(5 * time.Second)
	}
	if attempts >= len(w.Backoff) {
		attempts = len(w.Backoff) - 1
	}
	return time.Now().Add(w.Backoff[attempts])
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://innkeeper"
}
