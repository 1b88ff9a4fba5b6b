package reservations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"innkeeper/internal/app/locks"
	appoutbox "innkeeper/internal/app/outbox"
	"innkeeper/internal/app/services/codes"
	"innkeeper/internal/app/uow"
	domainguest "innkeeper/internal/domain/guest"
	"innkeeper/internal/domain/pricing"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	"innkeeper/internal/domain/shared/money"
	domaintenant "innkeeper/internal/domain/tenant"
)

var (
	ErrCapacityExceeded  = errors.New("reservations: guest count exceeds room capacity")
	ErrDuplicateResource = errors.New("reservations: could not allocate a unique confirmation code")
	ErrFactoryRequired   = errors.New("reservations: unit of work factory required")
)

const (
	confirmationPrefix = "RSV"
	codeLength         = 8
	maxCodeAttempts    = 5
	defaultLockTTL     = 10 * time.Second
)

// Service is the reservation orchestrator: it sequences validation, pricing,
// availability and persistence for every reservation operation, and triggers
// the best-effort side effects (room status, guest statistics).
type Service struct {
	UoW     uow.Factory
	Locks   locks.RoomLocker
	Outbox  appoutbox.Outbox
	Encoder appoutbox.EventEncoder
	Logger  *slog.Logger
	LockTTL time.Duration
	// Clock is swappable in tests; defaults to time.Now.
	Clock func() time.Time
}

type CreateParams struct {
	TenantID         string
	PropertyID       string
	RoomID           string
	GuestID          string
	CheckIn          time.Time
	CheckOut         time.Time
	Adults           int
	Children         int
	AdditionalGuests []string
	Source           string
	Notes            string
	DepositRequired  int64
	DirectCheckIn    bool
	ActorID          string
}

// Create runs the full precondition pipeline and persists a new reservation.
// Each step is a hard gate: dates, property, room, guest, capacity,
// availability, then a unique confirmation code and the pricing snapshot.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domainreservation.Reservation, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	now := s.now()

	stay, err := daterange.New(params.CheckIn, params.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := domainreservation.ValidateCheckInNotPast(stay, now); err != nil {
		return nil, err
	}

	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	tenantID := domaintenant.ID(params.TenantID)
	prop, err := activeProperty(ctx, unit, tenantID, domainproperty.ID(params.PropertyID))
	if err != nil {
		return nil, err
	}
	rm, err := activeRoomInProperty(ctx, unit, tenantID, prop.ID, domainroom.ID(params.RoomID))
	if err != nil {
		return nil, err
	}
	gst, err := activeGuest(ctx, unit, tenantID, domainguest.ID(params.GuestID))
	if err != nil {
		return nil, err
	}
	if !rm.Fits(params.Adults, params.Children) {
		return nil, ErrCapacityExceeded
	}

	// The room lock closes the read-then-write race window: the availability
	// check and the insert happen under the same exclusive section.
	release, err := s.acquireRoomLock(ctx, params.TenantID, params.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	checker := domainreservation.Checker{Reservations: unit.Reservations()}
	verdict, err := checker.IsAvailable(ctx, domainreservation.AvailabilityQuery{
		TenantID: tenantID,
		RoomID:   rm.ID,
		CheckIn:  stay.CheckIn,
		CheckOut: stay.CheckOut,
	})
	if err != nil {
		return nil, err
	}
	if !verdict.Available {
		return nil, verdict.Conflict
	}

	code, err := s.uniqueConfirmationCode(ctx, unit)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.QuoteStay(rm, stay, params.Adults, params.Children, nil)
	if err != nil {
		return nil, err
	}

	rsv, err := domainreservation.NewReservation(domainreservation.CreateParams{
		ID:               domainreservation.ID(uuid.NewString()),
		TenantID:         tenantID,
		PropertyID:       prop.ID,
		RoomID:           rm.ID,
		GuestID:          gst.ID,
		ConfirmationCode: code,
		Stay:             stay,
		Adults:           params.Adults,
		Children:         params.Children,
		AdditionalGuests: params.AdditionalGuests,
		Pricing:          quote,
		DepositRequired:  money.Money{Amount: params.DepositRequired, Currency: quote.Total.Currency},
		Source:           domainreservation.Source(params.Source),
		Notes:            params.Notes,
		DirectCheckIn:    params.DirectCheckIn,
		Now:              now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Reservations().Save(ctx, rsv); err != nil {
		return nil, err
	}
	if params.DirectCheckIn {
		s.applyCheckInSideEffects(ctx, unit, rsv, now)
	}
	if err := s.drainEvents(ctx, rsv); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return rsv, nil
}

type UpdateParams struct {
	TenantID         string
	ReservationID    string
	CheckIn          *time.Time
	CheckOut         *time.Time
	RoomID           *string
	Adults           *int
	Children         *int
	AdditionalGuests []string
	Notes            *string
	ActorID          string
}

// Update re-validates only what changes: date or room changes re-run the
// availability check excluding the reservation itself, and any change to
// dates, room or party size re-derives the pricing snapshot.
func (s *Service) Update(ctx context.Context, params UpdateParams) (*domainreservation.Reservation, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	now := s.now()

	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	tenantID := domaintenant.ID(params.TenantID)
	rsv, err := unit.Reservations().ByID(ctx, tenantID, domainreservation.ID(params.ReservationID))
	if err != nil {
		return nil, err
	}
	if !rsv.Active() {
		return nil, domainreservation.ErrReservationNotFound
	}

	stay := rsv.Stay
	datesChanged := params.CheckIn != nil || params.CheckOut != nil
	if datesChanged {
		checkIn := stay.CheckIn
		checkOut := stay.CheckOut
		if params.CheckIn != nil {
			checkIn = *params.CheckIn
		}
		if params.CheckOut != nil {
			checkOut = *params.CheckOut
		}
		stay, err = daterange.New(checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if err := domainreservation.ValidateCheckInNotPast(stay, now); err != nil {
			return nil, err
		}
	}

	roomChanged := params.RoomID != nil && domainroom.ID(*params.RoomID) != rsv.RoomID
	targetRoomID := rsv.RoomID
	if roomChanged {
		targetRoomID = domainroom.ID(*params.RoomID)
	}
	rm, err := activeRoomInProperty(ctx, unit, tenantID, rsv.PropertyID, targetRoomID)
	if err != nil {
		return nil, err
	}

	adults := rsv.Adults
	children := rsv.Children
	guestsChanged := params.Adults != nil || params.Children != nil
	if params.Adults != nil {
		adults = *params.Adults
	}
	if params.Children != nil {
		children = *params.Children
	}
	if (guestsChanged || roomChanged) && !rm.Fits(adults, children) {
		return nil, ErrCapacityExceeded
	}

	if datesChanged || roomChanged {
		release, err := s.acquireRoomLock(ctx, params.TenantID, string(targetRoomID))
		if err != nil {
			return nil, err
		}
		defer release()

		checker := domainreservation.Checker{Reservations: unit.Reservations()}
		verdict, err := checker.IsAvailable(ctx, domainreservation.AvailabilityQuery{
			TenantID:             tenantID,
			RoomID:               targetRoomID,
			CheckIn:              stay.CheckIn,
			CheckOut:             stay.CheckOut,
			ExcludeReservationID: rsv.ID,
		})
		if err != nil {
			return nil, err
		}
		if !verdict.Available {
			return nil, verdict.Conflict
		}
	}

	if datesChanged {
		if err := rsv.Reschedule(stay, now); err != nil {
			return nil, err
		}
	}
	if roomChanged {
		if err := rsv.MoveToRoom(rm.ID, now); err != nil {
			return nil, err
		}
	}
	if guestsChanged || len(params.AdditionalGuests) > 0 {
		additional := params.AdditionalGuests
		if additional == nil {
			additional = rsv.AdditionalGuests
		}
		if err := rsv.SetGuests(adults, children, additional, now); err != nil {
			return nil, err
		}
	}
	if params.Notes != nil {
		rsv.Notes = *params.Notes
	}

	if datesChanged || roomChanged || guestsChanged {
		quote, err := pricing.QuoteStay(rm, stay, adults, children, rsv.Pricing.ExtraFees)
		if err != nil {
			return nil, err
		}
		rsv.ApplyPricing(quote, now)
	}

	if err := unit.Reservations().Save(ctx, rsv); err != nil {
		return nil, err
	}
	if err := s.drainEvents(ctx, rsv); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return rsv, nil
}

// Confirm moves a pending reservation to confirmed.
func (s *Service) Confirm(ctx context.Context, tenantID, reservationID, actorID string) (*domainreservation.Reservation, error) {
	return s.transition(ctx, tenantID, reservationID, func(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, now time.Time) error {
		return rsv.Confirm(now)
	})
}

// CheckIn transitions to checked_in and fires the room/guest side effects.
func (s *Service) CheckIn(ctx context.Context, tenantID, reservationID, actorID string) (*domainreservation.Reservation, error) {
	return s.transition(ctx, tenantID, reservationID, func(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, now time.Time) error {
		if err := rsv.CheckIn(actorID, now); err != nil {
			return err
		}
		s.applyCheckInSideEffects(ctx, unit, rsv, now)
		return nil
	})
}

// CheckOut applies late charges, transitions to checked_out and sends the room
// to cleaning.
func (s *Service) CheckOut(ctx context.Context, tenantID, reservationID, actorID string, lateCharges []pricing.Fee) (*domainreservation.Reservation, error) {
	return s.transition(ctx, tenantID, reservationID, func(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, now time.Time) error {
		if err := rsv.CheckOut(actorID, lateCharges, now); err != nil {
			return err
		}
		s.setRoomStatus(ctx, unit, rsv, domainroom.StatusCleaning, now)
		return nil
	})
}

// Cancel aborts a non-terminal reservation; a room physically held by the stay
// returns to available.
func (s *Service) Cancel(ctx context.Context, tenantID, reservationID, actorID, reason string, refundAmount int64) (*domainreservation.Reservation, error) {
	return s.transition(ctx, tenantID, reservationID, func(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, now time.Time) error {
		refund := money.Money{Amount: refundAmount, Currency: rsv.Pricing.Total.Currency}
		freesRoom, err := rsv.Cancel(actorID, reason, refund, now)
		if err != nil {
			return err
		}
		if freesRoom {
			s.setRoomStatus(ctx, unit, rsv, domainroom.StatusAvailable, now)
		}
		return nil
	})
}

// ByID loads one reservation.
func (s *Service) ByID(ctx context.Context, tenantID, reservationID string) (*domainreservation.Reservation, error) {
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	rsv, err := unit.Reservations().ByID(ctx, domaintenant.ID(tenantID), domainreservation.ID(reservationID))
	if err != nil {
		return nil, err
	}
	if !rsv.Active() {
		return nil, domainreservation.ErrReservationNotFound
	}
	return rsv, nil
}

// List returns reservations matching the filter.
func (s *Service) List(ctx context.Context, tenantID string, filter domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	return unit.Reservations().List(ctx, domaintenant.ID(tenantID), filter)
}

type transitionFn func(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, now time.Time) error

func (s *Service) transition(ctx context.Context, tenantID, reservationID string, apply transitionFn) (*domainreservation.Reservation, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	now := s.now()
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	rsv, err := unit.Reservations().ByID(ctx, domaintenant.ID(tenantID), domainreservation.ID(reservationID))
	if err != nil {
		return nil, err
	}
	if !rsv.Active() {
		return nil, domainreservation.ErrReservationNotFound
	}
	if err := apply(ctx, unit, rsv, now); err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, rsv); err != nil {
		return nil, err
	}
	if err := s.drainEvents(ctx, rsv); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return rsv, nil
}

// applyCheckInSideEffects flips the room to occupied and bumps the guest's
// stay statistics. Both are best-effort: a failure is logged distinctly and
// never rolls back the check-in itself.
func (s *Service) applyCheckInSideEffects(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, now time.Time) {
	s.setRoomStatus(ctx, unit, rsv, domainroom.StatusOccupied, now)

	gst, err := unit.Guests().ByID(ctx, rsv.TenantID, rsv.GuestID)
	if err == nil {
		if err = gst.RecordStay(rsv.Pricing.Total, now); err == nil {
			err = unit.Guests().Save(ctx, gst)
		}
	}
	if err != nil {
		s.log().Error("guest statistics update failed after check-in",
			"reservation_id", rsv.ID, "guest_id", rsv.GuestID, "error", err)
	}
}

func (s *Service) setRoomStatus(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, status domainroom.Status, now time.Time) {
	rm, err := unit.Rooms().ByID(ctx, rsv.TenantID, rsv.RoomID)
	if err == nil {
		if err = rm.SetStatus(status, now); err == nil {
			err = unit.Rooms().Save(ctx, rm)
		}
	}
	if err != nil {
		s.log().Error("room status update failed",
			"reservation_id", rsv.ID, "room_id", rsv.RoomID, "status", status, "error", err)
	}
}

func (s *Service) uniqueConfirmationCode(ctx context.Context, unit uow.UnitOfWork) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := codes.Generate(confirmationPrefix, codeLength)
		exists, err := unit.Reservations().ConfirmationCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrDuplicateResource
}

func (s *Service) acquireRoomLock(ctx context.Context, tenantID, roomID string) (func(), error) {
	if s.Locks == nil {
		return func() {}, nil
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return s.Locks.AcquireRoom(ctx, tenantID, roomID, ttl)
}

func (s *Service) drainEvents(ctx context.Context, rsv *domainreservation.Reservation) error {
	pending := rsv.PendingEvents()
	rsv.ClearEvents()
	return appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, pending)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func activeProperty(ctx context.Context, unit uow.UnitOfWork, tenantID domaintenant.ID, id domainproperty.ID) (*domainproperty.Property, error) {
	prop, err := unit.Properties().ByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !prop.Active() {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return prop, nil
}

func activeRoomInProperty(ctx context.Context, unit uow.UnitOfWork, tenantID domaintenant.ID, propertyID domainproperty.ID, id domainroom.ID) (*domainroom.Room, error) {
	rm, err := unit.Rooms().ByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !rm.Active() || rm.PropertyID != propertyID {
		return nil, domainroom.ErrRoomNotFound
	}
	return rm, nil
}

func activeGuest(ctx context.Context, unit uow.UnitOfWork, tenantID domaintenant.ID, id domainguest.ID) (*domainguest.Guest, error) {
	gst, err := unit.Guests().ByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !gst.Active() {
		return nil, domainguest.ErrGuestNotFound
	}
	if gst.Blacklisted {
		return nil, domainguest.ErrBlacklisted
	}
	return gst, nil
}
