package outbox

import (
	"context"
	"encoding/json"
	"time"

	"innkeeper/internal/domain/shared/events"
)

// EventRecord is the serialized form of a domain event queued for publishing.
type EventRecord struct {
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox buffers event records until a worker drains them to the broker.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

// EventEncoder turns a domain event into a wire payload.
type EventEncoder interface {
	Encode(event events.DomainEvent) ([]byte, error)
}

// JSONEventEncoder marshals the event struct as-is.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(event events.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// RecordDomainEvents encodes and queues every pending event; a nil outbox is a
// no-op so tests can skip eventing entirely.
func RecordDomainEvents(ctx context.Context, sink Outbox, encoder EventEncoder, pending []events.DomainEvent) error {
	if sink == nil || len(pending) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, event := range pending {
		payload, err := encoder.Encode(event)
		if err != nil {
			return err
		}
		record := EventRecord{
			Name:       event.EventName(),
			Aggregate:  event.AggregateID(),
			Payload:    payload,
			OccurredAt: event.OccurredAt(),
		}
		if err := sink.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
