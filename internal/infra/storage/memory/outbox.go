package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appoutbox "innkeeper/internal/app/outbox"
	infraoutbox "innkeeper/internal/infra/outbox"
)

// Outbox keeps event documents in memory; good enough for tests and demo mode
// where nothing consumes them unless a worker is attached.
type Outbox struct {
	mu      sync.Mutex
	entries []*infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &infraoutbox.EventDocument{
		ID:         uuid.NewString(),
		Name:       record.Name,
		Aggregate:  record.Aggregate,
		Payload:    record.Payload,
		Headers:    record.Headers,
		OccurredAt: record.OccurredAt,
		Status:     infraoutbox.StatusPending,
	})
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, doc := range o.entries {
		if doc.Status != infraoutbox.StatusPending || doc.ClaimedBy != "" {
			continue
		}
		if !doc.NextRetry.IsZero() && doc.NextRetry.After(now) {
			continue
		}
		doc.ClaimedBy = workerID
		copyDoc := *doc
		return &copyDoc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.entries {
		if doc.ID == id {
			doc.Status = infraoutbox.StatusSent
			doc.ClaimedBy = ""
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.entries {
		if doc.ID == id {
			doc.Attempts++
			doc.NextRetry = retryAt
			doc.LastError = reason
			doc.ClaimedBy = ""
			return nil
		}
	}
	return nil
}

// Pending returns pending entries, oldest first; used by tests.
func (o *Outbox) Pending() []infraoutbox.EventDocument {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.EventDocument, 0, len(o.entries))
	for _, doc := range o.entries {
		if doc.Status == infraoutbox.StatusPending {
			out = append(out, *doc)
		}
	}
	return out
}

var _ infraoutbox.Store = (*Outbox)(nil)
var _ appoutbox.Outbox = (*Outbox)(nil)
