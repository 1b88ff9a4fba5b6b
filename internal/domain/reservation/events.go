package reservation

import (
	"time"

	"innkeeper/internal/domain/guest"
	"innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	"innkeeper/internal/domain/shared/money"
	"innkeeper/internal/domain/tenant"
)

type RoomReserved struct {
	ReservationID    ID
	TenantID         tenant.ID
	RoomID           room.ID
	GuestID          guest.ID
	ConfirmationCode string
	Stay             daterange.DateRange
	Total            money.Money
	At               time.Time
}

func (e RoomReserved) EventName() string     { return "reservation.created" }
func (e RoomReserved) AggregateID() string   { return string(e.ReservationID) }
func (e RoomReserved) OccurredAt() time.Time { return e.At }

type ReservationConfirmed struct {
	ReservationID ID
	TenantID      tenant.ID
	RoomID        room.ID
	Stay          daterange.DateRange
	At            time.Time
}

func (e ReservationConfirmed) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmed) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationConfirmed) OccurredAt() time.Time { return e.At }

type GuestCheckedIn struct {
	ReservationID ID
	TenantID      tenant.ID
	RoomID        room.ID
	GuestID       guest.ID
	ActorID       string
	At            time.Time
}

func (e GuestCheckedIn) EventName() string     { return "reservation.checked_in" }
func (e GuestCheckedIn) AggregateID() string   { return string(e.ReservationID) }
func (e GuestCheckedIn) OccurredAt() time.Time { return e.At }

type GuestCheckedOut struct {
	ReservationID ID
	TenantID      tenant.ID
	RoomID        room.ID
	GuestID       guest.ID
	ActorID       string
	Total         money.Money
	At            time.Time
}

func (e GuestCheckedOut) EventName() string     { return "reservation.checked_out" }
func (e GuestCheckedOut) AggregateID() string   { return string(e.ReservationID) }
func (e GuestCheckedOut) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ID
	TenantID      tenant.ID
	RoomID        room.ID
	Reason        string
	Refund        money.Money
	At            time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }
