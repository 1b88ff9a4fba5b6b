package events

import "time"

// DomainEvent is implemented by facts an aggregate records during a mutation.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects pending events on an aggregate until they are drained
// into the outbox by the application layer.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(e DomainEvent) {
	r.pending = append(r.pending, e)
}

// PendingEvents returns the recorded events in order.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return r.pending
}

// ClearEvents drops all recorded events.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
