package outbox

import (
	"context"
	"time"

	appoutbox "innkeeper/internal/app/outbox"
)

// Delivery states of an outbox entry.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// EventDocument is an outbox entry as stored; the worker claims, publishes and
// marks them in order of occurrence.
type EventDocument struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
	Status     string
	Attempts   int
	NextRetry  time.Time
	ClaimedBy  string
	LastError  string
}

// Store persists outbox entries. Add satisfies the application-layer Outbox
// port; the rest serves the worker.
type Store interface {
	Add(ctx context.Context, record appoutbox.EventRecord) error
	// Claim returns one due pending entry and stamps the worker id on it, or
	// nil when nothing is due.
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error
}
