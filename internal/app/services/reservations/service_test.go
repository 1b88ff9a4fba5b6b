package reservations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralocks "innkeeper/internal/infra/locks"
	"innkeeper/internal/infra/storage/memory"

	domainguest "innkeeper/internal/domain/guest"
	"innkeeper/internal/domain/pricing"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/money"
	domaintenant "innkeeper/internal/domain/tenant"
)

var fixedNow = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service  *Service
	factory  memory.Factory
	tenantID string
	property *domainproperty.Property
	room     *domainroom.Room
	guest    *domainguest.Guest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewFactory()

	tnt, err := domaintenant.New("tenant-1", "Seaside Hotels", domaintenant.Subscription{
		Start: fixedNow, End: fixedNow.AddDate(1, 0, 0),
	}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, factory.TenantRepo.Save(ctx, tnt))

	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:       "prop-1",
		TenantID: tnt.ID,
		Name:     "Seaside Main",
		Now:      fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, factory.PropertyRepo.Save(ctx, prop))

	rm, err := domainroom.New(domainroom.CreateParams{
		ID:           "room-101",
		TenantID:     tnt.ID,
		PropertyID:   prop.ID,
		NameOrNumber: "101",
		Type:         domainroom.TypeRoom,
		Capacity:     domainroom.Capacity{Adults: 2, Children: 1},
		Rate: domainroom.Rate{
			Base:       money.Must(100_00, "USD"),
			ExtraAdult: money.Must(20_00, "USD"),
			ExtraChild: money.Must(10_00, "USD"),
		},
		Fees: domainroom.Fees{
			Cleaning: money.Must(25_00, "USD"),
			Service:  money.Must(5_00, "USD"),
		},
		Now: fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, factory.RoomRepo.Save(ctx, rm))

	gst, err := domainguest.New(domainguest.CreateParams{
		ID:       "guest-1",
		TenantID: tnt.ID,
		Name:     "Ada Brooks",
		Email:    "ada@example.com",
		Currency: "USD",
		Now:      fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, factory.GuestRepo.Save(ctx, gst))

	return &fixture{
		service: &Service{
			UoW:   factory,
			Locks: infralocks.NewMemoryLocker(),
			Clock: func() time.Time { return fixedNow },
		},
		factory:  factory,
		tenantID: string(tnt.ID),
		property: prop,
		room:     rm,
		guest:    gst,
	}
}

func (f *fixture) createParams() CreateParams {
	return CreateParams{
		TenantID:   f.tenantID,
		PropertyID: string(f.property.ID),
		RoomID:     string(f.room.ID),
		GuestID:    string(f.guest.ID),
		CheckIn:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC),
		Adults:     2,
		ActorID:    "staff-1",
	}
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rsv, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)

	assert.Equal(t, domainreservation.StatusPending, rsv.Status)
	assert.True(t, strings.HasPrefix(rsv.ConfirmationCode, "RSV-"))
	assert.Len(t, rsv.ConfirmationCode, len("RSV-")+8)
	// $100 x 3 nights + $25 cleaning + $5 service
	assert.Equal(t, int64(330_00), rsv.Pricing.Total.Amount)
	assert.Equal(t, int64(330_00), rsv.Payments.RemainingBalance.Amount)
	assert.Equal(t, domainreservation.PaymentPending, rsv.Payments.Status)
	assert.Empty(t, rsv.PendingEvents(), "events are drained into the outbox")

	stored, err := f.service.ByID(ctx, f.tenantID, string(rsv.ID))
	require.NoError(t, err)
	assert.Equal(t, rsv.ConfirmationCode, stored.ConfirmationCode)
}

func TestCreateReservationExtraGuestSurcharge(t *testing.T) {
	f := newFixture(t)
	params := f.createParams()
	params.Adults = 3
	params.AdditionalGuests = []string{"Sam Brooks", "Lee Brooks"}

	rsv, err := f.service.Create(context.Background(), params)
	require.NoError(t, err)
	// $100 x 3 + 1 extra adult x $20 x 3 + $25 + $5
	assert.Equal(t, int64(390_00), rsv.Pricing.Total.Amount)
	assert.Equal(t, int64(60_00), rsv.Pricing.ExtraGuests.Amount)
}

func TestCreateReservationGates(t *testing.T) {
	ctx := context.Background()

	t.Run("check-in in the past", func(t *testing.T) {
		f := newFixture(t)
		params := f.createParams()
		params.CheckIn = fixedNow.AddDate(0, 0, -2)
		params.CheckOut = fixedNow.AddDate(0, 0, 1)
		_, err := f.service.Create(ctx, params)
		assert.ErrorIs(t, err, domainreservation.ErrCheckInInPast)
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)
		params := f.createParams()
		params.RoomID = "missing"
		_, err := f.service.Create(ctx, params)
		assert.ErrorIs(t, err, domainroom.ErrRoomNotFound)
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		f := newFixture(t)
		params := f.createParams()
		params.Adults = 3
		params.Children = 2
		_, err := f.service.Create(ctx, params)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("blacklisted guest", func(t *testing.T) {
		f := newFixture(t)
		f.guest.Blacklisted = true
		require.NoError(t, f.factory.GuestRepo.Save(ctx, f.guest))
		_, err := f.service.Create(ctx, f.createParams())
		assert.ErrorIs(t, err, domainguest.ErrBlacklisted)
	})

	t.Run("room under maintenance still bookable for future dates", func(t *testing.T) {
		// maintenance blocks offering the room in availability search, not an
		// explicitly targeted future reservation
		f := newFixture(t)
		require.NoError(t, f.room.SetStatus(domainroom.StatusMaintenance, fixedNow))
		require.NoError(t, f.factory.RoomRepo.Save(ctx, f.room))
		_, err := f.service.Create(ctx, f.createParams())
		assert.NoError(t, err)
	})
}

func TestCreateReservationConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)

	t.Run("overlap rejected with conflict details", func(t *testing.T) {
		params := f.createParams()
		params.CheckIn = time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC)
		params.CheckOut = time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC)
		_, err := f.service.Create(ctx, params)
		var conflict *domainreservation.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, first.ConfirmationCode, conflict.ConfirmationCode)
	})

	t.Run("back-to-back accepted", func(t *testing.T) {
		params := f.createParams()
		params.CheckIn = time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC)
		params.CheckOut = time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
		_, err := f.service.Create(ctx, params)
		assert.NoError(t, err)
	})

	t.Run("cancelled stay frees the dates", func(t *testing.T) {
		_, err := f.service.Cancel(ctx, f.tenantID, string(first.ID), "staff-1", "guest request", 0)
		require.NoError(t, err)
		_, err = f.service.Create(ctx, f.createParams())
		assert.NoError(t, err)
	})
}

func TestLifecycleSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rsv, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, f.tenantID, string(rsv.ID), "staff-1")
	require.NoError(t, err)

	checkedIn, err := f.service.CheckIn(ctx, f.tenantID, string(rsv.ID), "staff-1")
	require.NoError(t, err)
	assert.Equal(t, domainreservation.StatusCheckedIn, checkedIn.Status)

	rm, err := f.factory.RoomRepo.ByID(ctx, domaintenant.ID(f.tenantID), f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domainroom.StatusOccupied, rm.Status)

	gst, err := f.factory.GuestRepo.ByID(ctx, domaintenant.ID(f.tenantID), f.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gst.TotalStays)
	assert.Equal(t, int64(330_00), gst.TotalSpent.Amount)

	checkedOut, err := f.service.CheckOut(ctx, f.tenantID, string(rsv.ID), "staff-1", nil)
	require.NoError(t, err)
	assert.Equal(t, domainreservation.StatusCheckedOut, checkedOut.Status)

	rm, err = f.factory.RoomRepo.ByID(ctx, domaintenant.ID(f.tenantID), f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domainroom.StatusCleaning, rm.Status)
}

func TestDirectCheckInWalkIn(t *testing.T) {
	f := newFixture(t)
	params := f.createParams()
	params.CheckIn = fixedNow
	params.CheckOut = fixedNow.AddDate(0, 0, 2)
	params.Source = "walk_in"
	params.DirectCheckIn = true

	rsv, err := f.service.Create(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, domainreservation.StatusCheckedIn, rsv.Status)
	assert.Equal(t, domainreservation.SourceWalkIn, rsv.Source)

	rm, err := f.factory.RoomRepo.ByID(context.Background(), domaintenant.ID(f.tenantID), f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domainroom.StatusOccupied, rm.Status)
}

func TestCancelFreesRoomStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rsv, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)
	_, err = f.service.Confirm(ctx, f.tenantID, string(rsv.ID), "staff-1")
	require.NoError(t, err)
	_, err = f.service.CheckIn(ctx, f.tenantID, string(rsv.ID), "staff-1")
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, f.tenantID, string(rsv.ID), "manager-1", "burst pipe", 330_00)
	require.NoError(t, err)
	assert.Equal(t, domainreservation.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Cancellation)
	assert.Equal(t, int64(330_00), cancelled.Cancellation.RefundAmount.Amount)

	rm, err := f.factory.RoomRepo.ByID(ctx, domaintenant.ID(f.tenantID), f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domainroom.StatusAvailable, rm.Status)
}

func TestUpdateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rsv, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)

	t.Run("reschedule reprices", func(t *testing.T) {
		newIn := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
		newOut := time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC)
		updated, err := f.service.Update(ctx, UpdateParams{
			TenantID:      f.tenantID,
			ReservationID: string(rsv.ID),
			CheckIn:       &newIn,
			CheckOut:      &newOut,
			ActorID:       "staff-1",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Pricing.Nights)
		// $100 x 4 + $25 + $5
		assert.Equal(t, int64(430_00), updated.Pricing.Total.Amount)
	})

	t.Run("party change validates capacity", func(t *testing.T) {
		five := 5
		_, err := f.service.Update(ctx, UpdateParams{
			TenantID:      f.tenantID,
			ReservationID: string(rsv.ID),
			Adults:        &five,
			ActorID:       "staff-1",
		})
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("notes only does not reprice", func(t *testing.T) {
		before, err := f.service.ByID(ctx, f.tenantID, string(rsv.ID))
		require.NoError(t, err)
		notes := "late arrival expected"
		updated, err := f.service.Update(ctx, UpdateParams{
			TenantID:      f.tenantID,
			ReservationID: string(rsv.ID),
			Notes:         &notes,
			ActorID:       "staff-1",
		})
		require.NoError(t, err)
		assert.Equal(t, notes, updated.Notes)
		assert.Equal(t, before.Pricing.Total, updated.Pricing.Total)
	})

	t.Run("update after check-in rejected", func(t *testing.T) {
		_, err := f.service.Confirm(ctx, f.tenantID, string(rsv.ID), "staff-1")
		require.NoError(t, err)
		_, err = f.service.CheckIn(ctx, f.tenantID, string(rsv.ID), "staff-1")
		require.NoError(t, err)

		newIn := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
		newOut := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
		_, err = f.service.Update(ctx, UpdateParams{
			TenantID:      f.tenantID,
			ReservationID: string(rsv.ID),
			CheckIn:       &newIn,
			CheckOut:      &newOut,
			ActorID:       "staff-1",
		})
		assert.ErrorIs(t, err, domainreservation.ErrInvalidStateTransition)
	})
}

func TestCheckOutLateCharges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rsv, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)
	_, err = f.service.Confirm(ctx, f.tenantID, string(rsv.ID), "staff-1")
	require.NoError(t, err)
	_, err = f.service.CheckIn(ctx, f.tenantID, string(rsv.ID), "staff-1")
	require.NoError(t, err)

	late := []pricing.Fee{{Name: "minibar", Amount: money.Must(18_50, "USD")}}
	out, err := f.service.CheckOut(ctx, f.tenantID, string(rsv.ID), "staff-1", late)
	require.NoError(t, err)
	assert.Equal(t, int64(330_00+18_50), out.Pricing.Total.Amount)
	assert.Equal(t, int64(330_00+18_50), out.Payments.RemainingBalance.Amount)
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rsv, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)

	_, err = f.service.ByID(ctx, "other-tenant", string(rsv.ID))
	assert.ErrorIs(t, err, domainreservation.ErrReservationNotFound)
}
