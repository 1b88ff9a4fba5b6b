package reservation

import (
	"context"
	"fmt"
	"time"

	"innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	"innkeeper/internal/domain/tenant"
)

// ConflictError carries enough about the clashing reservation for the caller
// to act on: its confirmation code, dates and status.
type ConflictError struct {
	ConfirmationCode string
	CheckIn          time.Time
	CheckOut         time.Time
	Status           Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("reservation: room already booked %s to %s (confirmation %s, status %s)",
		e.CheckIn.Format("2006-01-02"), e.CheckOut.Format("2006-01-02"), e.ConfirmationCode, e.Status)
}

// Availability is the checker verdict; Conflict is nil when the room is free.
type Availability struct {
	Available bool
	Conflict  *ConflictError
}

// Checker is the single source of truth for "is this room free". It never
// mutates anything and is safe to call repeatedly; writers must re-run it
// under the room lock immediately before persisting.
type Checker struct {
	Reservations Repository
}

type AvailabilityQuery struct {
	TenantID tenant.ID
	RoomID   room.ID
	CheckIn  time.Time
	CheckOut time.Time
	// ExcludeReservationID skips the reservation being updated so it does not
	// conflict with itself.
	ExcludeReservationID ID
}

// IsAvailable normalizes the requested dates to day granularity, loads every
// blocking reservation on the room and reports the first half-open overlap.
// Persistence errors propagate untouched; no domain error is raised here.
func (c Checker) IsAvailable(ctx context.Context, q AvailabilityQuery) (Availability, error) {
	requested := daterange.DateRange{
		CheckIn:  daterange.Normalize(q.CheckIn),
		CheckOut: daterange.Normalize(q.CheckOut),
	}
	blocking, err := c.Reservations.ListBlockingByRoom(ctx, q.TenantID, q.RoomID)
	if err != nil {
		return Availability{}, err
	}
	for _, existing := range blocking {
		if q.ExcludeReservationID != "" && existing.ID == q.ExcludeReservationID {
			continue
		}
		if !existing.BlocksRoom() {
			continue
		}
		if requested.Overlaps(existing.Stay) {
			return Availability{
				Available: false,
				Conflict: &ConflictError{
					ConfirmationCode: existing.ConfirmationCode,
					CheckIn:          existing.Stay.CheckIn,
					CheckOut:         existing.Stay.CheckOut,
					Status:           existing.Status,
				},
			}, nil
		}
	}
	return Availability{Available: true}, nil
}
