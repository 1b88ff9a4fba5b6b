package reservation

import (
	"context"
	"errors"
	"time"

	"innkeeper/internal/domain/guest"
	"innkeeper/internal/domain/pricing"
	"innkeeper/internal/domain/property"
	"innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	"innkeeper/internal/domain/shared/events"
	"innkeeper/internal/domain/shared/money"
	"innkeeper/internal/domain/tenant"
)

var (
	ErrReservationNotFound    = errors.New("reservation: not found")
	ErrInvalidStateTransition = errors.New("reservation: invalid state transition")
	ErrCheckInInPast          = errors.New("reservation: check-in date is in the past")
	ErrConfirmationRequired   = errors.New("reservation: confirmation code required")
	ErrGuestRequired          = errors.New("reservation: guest id required")
	ErrNoGuests               = errors.New("reservation: at least one guest required")
)

type ID string

// Status is the reservation lifecycle state. It is deliberately a separate
// enum from the payment-side states even where names collide.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus summarizes how much of the total has been collected.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type Source string

const (
	SourceDirect Source = "direct"
	SourceOnline Source = "online"
	SourcePhone  Source = "phone"
	SourceWalkIn Source = "walk_in"
)

// PaymentSummary is the ledger rollup maintained on the aggregate. It is
// recomputed on every mutation and whenever a payment is recorded or refunded.
type PaymentSummary struct {
	TotalPaid        money.Money
	RemainingBalance money.Money
	Status           PaymentStatus
	DepositRequired  money.Money
	DepositPaid      bool
}

// Cancellation records who cancelled, when, why and how much was refunded.
type Cancellation struct {
	By           string
	At           time.Time
	Reason       string
	RefundAmount money.Money
}

// Reservation is the central aggregate: one booked stay of one guest party in
// one room, moving pending → confirmed → checked_in → checked_out, with
// cancellation reachable from every non-terminal state.
type Reservation struct {
	ID               ID
	TenantID         tenant.ID
	PropertyID       property.ID
	RoomID           room.ID
	GuestID          guest.ID
	ConfirmationCode string
	Stay             daterange.DateRange
	ActualCheckIn    *time.Time
	ActualCheckOut   *time.Time
	ConfirmedAt      *time.Time
	Adults           int
	Children         int
	AdditionalGuests []string
	Status           Status
	Pricing          pricing.Quote
	Payments         PaymentSummary
	Source           Source
	Cancellation     *Cancellation
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
	Version          int64
	events.EventRecorder
}

// Filter narrows list queries; zero values mean "any".
type Filter struct {
	Status  Status
	RoomID  room.ID
	GuestID guest.ID
}

type Repository interface {
	ByID(ctx context.Context, tenantID tenant.ID, id ID) (*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	// ListBlockingByRoom returns active reservations on the room whose status
	// blocks the room (pending, confirmed or checked_in), in persisted order.
	ListBlockingByRoom(ctx context.Context, tenantID tenant.ID, roomID room.ID) ([]*Reservation, error)
	List(ctx context.Context, tenantID tenant.ID, filter Filter) ([]*Reservation, error)
	ListByReservationIDs(ctx context.Context, tenantID tenant.ID, ids []ID) ([]*Reservation, error)
	// ConfirmationCodeExists checks the code against every tenant: confirmation
	// codes are globally unique so they can be shared with guests safely.
	ConfirmationCodeExists(ctx context.Context, code string) (bool, error)
}

type CreateParams struct {
	ID               ID
	TenantID         tenant.ID
	PropertyID       property.ID
	RoomID           room.ID
	GuestID          guest.ID
	ConfirmationCode string
	Stay             daterange.DateRange
	Adults           int
	Children         int
	AdditionalGuests []string
	Pricing          pricing.Quote
	DepositRequired  money.Money
	Source           Source
	Notes            string
	// DirectCheckIn creates the reservation already checked in (walk-ins),
	// skipping pending and confirmed.
	DirectCheckIn bool
	Now           time.Time
}

func NewReservation(params CreateParams) (*Reservation, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if params.ConfirmationCode == "" {
		return nil, ErrConfirmationRequired
	}
	if params.Adults+params.Children < 1 {
		return nil, ErrNoGuests
	}
	now := params.Now.UTC()
	source := params.Source
	if source == "" {
		source = SourceDirect
	}
	r := &Reservation{
		ID:               params.ID,
		TenantID:         params.TenantID,
		PropertyID:       params.PropertyID,
		RoomID:           params.RoomID,
		GuestID:          params.GuestID,
		ConfirmationCode: params.ConfirmationCode,
		Stay:             params.Stay,
		Adults:           params.Adults,
		Children:         params.Children,
		AdditionalGuests: append([]string(nil), params.AdditionalGuests...),
		Status:           StatusPending,
		Pricing:          params.Pricing.Copy(),
		Source:           source,
		Notes:            params.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.Payments = PaymentSummary{
		TotalPaid:        money.Zero(r.Pricing.Total.Currency),
		RemainingBalance: r.Pricing.Total,
		Status:           PaymentPending,
		DepositRequired:  params.DepositRequired,
	}
	r.Record(RoomReserved{
		ReservationID:    r.ID,
		TenantID:         r.TenantID,
		RoomID:           r.RoomID,
		GuestID:          r.GuestID,
		ConfirmationCode: r.ConfirmationCode,
		Stay:             r.Stay,
		Total:            r.Pricing.Total,
		At:               now,
	})
	if params.DirectCheckIn {
		r.Status = StatusCheckedIn
		r.ActualCheckIn = &now
		r.Record(GuestCheckedIn{ReservationID: r.ID, TenantID: r.TenantID, RoomID: r.RoomID, GuestID: r.GuestID, At: now})
	}
	return r, nil
}

// Active reports whether the reservation is not soft-deleted.
func (r *Reservation) Active() bool {
	return r.DeletedAt == nil
}

// BlocksRoom reports whether the reservation keeps its room from being booked
// for overlapping dates.
func (r *Reservation) BlocksRoom() bool {
	if !r.Active() {
		return false
	}
	switch r.Status {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// Confirm moves pending → confirmed.
func (r *Reservation) Confirm(now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidStateTransition
	}
	ts := now.UTC()
	r.Status = StatusConfirmed
	r.ConfirmedAt = &ts
	r.UpdatedAt = ts
	r.Record(ReservationConfirmed{ReservationID: r.ID, TenantID: r.TenantID, RoomID: r.RoomID, Stay: r.Stay, At: ts})
	return nil
}

// CheckIn moves confirmed → checked_in and stamps the actual arrival time.
func (r *Reservation) CheckIn(actorID string, now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrInvalidStateTransition
	}
	ts := now.UTC()
	r.Status = StatusCheckedIn
	r.ActualCheckIn = &ts
	r.UpdatedAt = ts
	r.Record(GuestCheckedIn{ReservationID: r.ID, TenantID: r.TenantID, RoomID: r.RoomID, GuestID: r.GuestID, ActorID: actorID, At: ts})
	return nil
}

// CheckOut applies late charges, moves checked_in → checked_out and stamps the
// actual departure time. The payment summary is re-derived against the new total.
func (r *Reservation) CheckOut(actorID string, lateCharges []pricing.Fee, now time.Time) error {
	if r.Status != StatusCheckedIn {
		return ErrInvalidStateTransition
	}
	for _, fee := range lateCharges {
		if err := r.Pricing.AddFee(fee); err != nil {
			return err
		}
	}
	ts := now.UTC()
	r.Status = StatusCheckedOut
	r.ActualCheckOut = &ts
	r.UpdatedAt = ts
	r.reconcile(r.Payments.TotalPaid)
	r.Record(GuestCheckedOut{ReservationID: r.ID, TenantID: r.TenantID, RoomID: r.RoomID, GuestID: r.GuestID, ActorID: actorID, Total: r.Pricing.Total, At: ts})
	return nil
}

// Cancel is legal from any state except checked_out and cancelled.
// FreesRoom on the returned outcome tells the caller whether the room had been
// held physically (confirmed or checked_in) and should return to available.
func (r *Reservation) Cancel(actorID, reason string, refund money.Money, now time.Time) (freesRoom bool, err error) {
	switch r.Status {
	case StatusCheckedOut, StatusCancelled:
		return false, ErrInvalidStateTransition
	}
	freesRoom = r.Status == StatusConfirmed || r.Status == StatusCheckedIn
	ts := now.UTC()
	r.Status = StatusCancelled
	r.Cancellation = &Cancellation{By: actorID, At: ts, Reason: reason, RefundAmount: refund}
	r.UpdatedAt = ts
	r.Record(ReservationCancelled{ReservationID: r.ID, TenantID: r.TenantID, RoomID: r.RoomID, Reason: reason, Refund: refund, At: ts})
	return freesRoom, nil
}

// Reschedule replaces the stay window; only pending and confirmed reservations
// may move. The caller must have re-run the availability check first.
func (r *Reservation) Reschedule(stay daterange.DateRange, now time.Time) error {
	if r.Status != StatusPending && r.Status != StatusConfirmed {
		return ErrInvalidStateTransition
	}
	r.Stay = stay
	r.UpdatedAt = now.UTC()
	return nil
}

// MoveToRoom reassigns the reservation to another room before arrival.
func (r *Reservation) MoveToRoom(roomID room.ID, now time.Time) error {
	if r.Status != StatusPending && r.Status != StatusConfirmed {
		return ErrInvalidStateTransition
	}
	r.RoomID = roomID
	r.UpdatedAt = now.UTC()
	return nil
}

// SetGuests updates the party size; repricing is the caller's responsibility.
func (r *Reservation) SetGuests(adults, children int, additional []string, now time.Time) error {
	if adults+children < 1 {
		return ErrNoGuests
	}
	r.Adults = adults
	r.Children = children
	r.AdditionalGuests = append([]string(nil), additional...)
	r.UpdatedAt = now.UTC()
	return nil
}

// ApplyPricing installs a fresh quote (after date/guest changes) and
// re-derives the payment summary against the new total.
func (r *Reservation) ApplyPricing(q pricing.Quote, now time.Time) {
	r.Pricing = q.Copy()
	r.UpdatedAt = now.UTC()
	r.reconcile(r.Payments.TotalPaid)
}

// ReconcilePayments ingests the ledger rollup (sum of paid, non-refunded
// amounts) and re-derives remaining balance and payment status.
func (r *Reservation) ReconcilePayments(totalPaid money.Money, now time.Time) {
	r.reconcile(totalPaid)
	r.UpdatedAt = now.UTC()
}

func (r *Reservation) reconcile(totalPaid money.Money) {
	currency := r.Pricing.Total.Currency
	if totalPaid.Currency == "" {
		totalPaid = money.Zero(currency)
	}
	remaining := money.Money{Amount: r.Pricing.Total.Amount - totalPaid.Amount, Currency: currency}
	r.Payments.TotalPaid = totalPaid
	r.Payments.RemainingBalance = remaining
	switch {
	case totalPaid.Amount <= 0:
		r.Payments.Status = PaymentPending
	case remaining.Amount <= 0:
		r.Payments.Status = PaymentPaid
	default:
		r.Payments.Status = PaymentPartial
	}
	if !r.Payments.DepositRequired.IsZero() && totalPaid.Amount >= r.Payments.DepositRequired.Amount {
		r.Payments.DepositPaid = true
	}
}

// ValidateCheckInNotPast rejects stays whose check-in day is already behind us.
// Applied at creation and whenever dates are modified.
func ValidateCheckInNotPast(stay daterange.DateRange, now time.Time) error {
	today := daterange.Normalize(now)
	if stay.CheckIn.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}
