package payments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralocks "innkeeper/internal/infra/locks"
	"innkeeper/internal/infra/storage/memory"

	"innkeeper/internal/app/services/reservations"
	domainguest "innkeeper/internal/domain/guest"
	domainpayment "innkeeper/internal/domain/payment"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/money"
	domaintenant "innkeeper/internal/domain/tenant"
)

var fixedNow = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	payments    *Service
	factory     memory.Factory
	tenantID    string
	reservation *domainreservation.Reservation
}

// newFixture seeds a tenant, property, room and guest and books a three-night
// stay totalling $330.
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
		ID: "prop-1", TenantID: tnt.ID, Name: "Seaside Main", Now: fixedNow,
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
		Rate:         domainroom.Rate{Base: money.Must(100_00, "USD")},
		Fees: domainroom.Fees{
			Cleaning: money.Must(25_00, "USD"),
			Service:  money.Must(5_00, "USD"),
		},
		Now: fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, factory.RoomRepo.Save(ctx, rm))

	gst, err := domainguest.New(domainguest.CreateParams{
		ID: "guest-1", TenantID: tnt.ID, Name: "Ada Brooks", Currency: "USD", Now: fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, factory.GuestRepo.Save(ctx, gst))

	booking := &reservations.Service{
		UoW:   factory,
		Locks: infralocks.NewMemoryLocker(),
		Clock: func() time.Time { return fixedNow },
	}
	rsv, err := booking.Create(ctx, reservations.CreateParams{
		TenantID:   string(tnt.ID),
		PropertyID: string(prop.ID),
		RoomID:     string(rm.ID),
		GuestID:    string(gst.ID),
		CheckIn:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC),
		Adults:     2,
		ActorID:    "staff-1",
	})
	require.NoError(t, err)

	return &fixture{
		payments: &Service{
			UoW:   factory,
			Clock: func() time.Time { return fixedNow },
		},
		factory:     factory,
		tenantID:    string(tnt.ID),
		reservation: rsv,
	}
}

func (f *fixture) recordParams(amount int64) RecordParams {
	return RecordParams{
		TenantID:      f.tenantID,
		ReservationID: string(f.reservation.ID),
		Amount:        amount,
		Method:        domainpayment.MethodCash,
		Details:       domainpayment.CashDetails{ReceivedBy: "staff-1"},
		ActorID:       "staff-1",
	}
}

func (f *fixture) storedReservation(t *testing.T) *domainreservation.Reservation {
	t.Helper()
	rsv, err := f.factory.ReservationRepo.ByID(context.Background(),
		domaintenant.ID(f.tenantID), f.reservation.ID)
	require.NoError(t, err)
	return rsv
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)

	pay, err := f.payments.Record(context.Background(), f.recordParams(300_00))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(pay.TransactionCode, "TXN-"))
	assert.Len(t, pay.TransactionCode, len("TXN-")+10)
	assert.Equal(t, domainpayment.StatePaid, pay.Status)

	rsv := f.storedReservation(t)
	assert.Equal(t, int64(300_00), rsv.Payments.TotalPaid.Amount)
	assert.Equal(t, int64(30_00), rsv.Payments.RemainingBalance.Amount)
	assert.Equal(t, domainreservation.PaymentPartial, rsv.Payments.Status)
}

func TestRecordPaymentSettlesInFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.payments.Record(ctx, f.recordParams(300_00))
	require.NoError(t, err)
	_, err = f.payments.Record(ctx, f.recordParams(30_00))
	require.NoError(t, err)

	rsv := f.storedReservation(t)
	assert.Equal(t, int64(330_00), rsv.Payments.TotalPaid.Amount)
	assert.Equal(t, int64(0), rsv.Payments.RemainingBalance.Amount)
	assert.Equal(t, domainreservation.PaymentPaid, rsv.Payments.Status)
}

func TestRecordPaymentRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("exceeds remaining balance", func(t *testing.T) {
		_, err := f.payments.Record(ctx, f.recordParams(400_00))
		assert.ErrorIs(t, err, ErrExceedsRemainingBalance)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := f.payments.Record(ctx, f.recordParams(0))
		assert.ErrorIs(t, err, domainpayment.ErrInvalidAmount)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		params := f.recordParams(100_00)
		params.ReservationID = "missing"
		_, err := f.payments.Record(ctx, params)
		assert.ErrorIs(t, err, domainreservation.ErrReservationNotFound)
	})

	t.Run("remaining balance shrinks between payments", func(t *testing.T) {
		_, err := f.payments.Record(ctx, f.recordParams(300_00))
		require.NoError(t, err)
		_, err = f.payments.Record(ctx, f.recordParams(100_00))
		assert.ErrorIs(t, err, ErrExceedsRemainingBalance)
	})
}

func TestRefundReconcilesSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pay, err := f.payments.Record(ctx, f.recordParams(300_00))
	require.NoError(t, err)

	refunded, err := f.payments.Refund(ctx, RefundParams{
		TenantID:  f.tenantID,
		PaymentID: string(pay.ID),
		Amount:    100_00,
		Reason:    "overcharge",
		ActorID:   "manager-1",
	})
	require.NoError(t, err)
	assert.True(t, refunded.Refund.Refunded)
	assert.Equal(t, int64(100_00), refunded.Refund.Amount.Amount)
	assert.Equal(t, domainpayment.StatePaid, refunded.Status)

	rsv := f.storedReservation(t)
	assert.Equal(t, int64(200_00), rsv.Payments.TotalPaid.Amount)
	assert.Equal(t, int64(130_00), rsv.Payments.RemainingBalance.Amount)
	assert.Equal(t, domainreservation.PaymentPartial, rsv.Payments.Status)
}

func TestFullRefundDowngrade(t *testing.T) {
	ctx := context.Background()

	t.Run("default reverts to pending", func(t *testing.T) {
		f := newFixture(t)
		pay, err := f.payments.Record(ctx, f.recordParams(300_00))
		require.NoError(t, err)

		refunded, err := f.payments.Refund(ctx, RefundParams{
			TenantID:  f.tenantID,
			PaymentID: string(pay.ID),
			Amount:    300_00,
			Reason:    "cancelled stay",
			ActorID:   "manager-1",
		})
		require.NoError(t, err)
		assert.Equal(t, domainpayment.StatePending, refunded.Status)

		rsv := f.storedReservation(t)
		assert.Equal(t, int64(0), rsv.Payments.TotalPaid.Amount)
		assert.Equal(t, domainreservation.PaymentPending, rsv.Payments.Status)
	})

	t.Run("configured terminal refunded state", func(t *testing.T) {
		f := newFixture(t)
		f.payments.RefundDowngrade = domainpayment.DowngradeToRefunded
		pay, err := f.payments.Record(ctx, f.recordParams(300_00))
		require.NoError(t, err)

		refunded, err := f.payments.Refund(ctx, RefundParams{
			TenantID:  f.tenantID,
			PaymentID: string(pay.ID),
			Amount:    300_00,
			Reason:    "cancelled stay",
			ActorID:   "manager-1",
		})
		require.NoError(t, err)
		assert.Equal(t, domainpayment.StateRefunded, refunded.Status)
	})
}

func TestRefundGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pay, err := f.payments.Record(ctx, f.recordParams(300_00))
	require.NoError(t, err)

	t.Run("exceeds paid amount", func(t *testing.T) {
		_, err := f.payments.Refund(ctx, RefundParams{
			TenantID:  f.tenantID,
			PaymentID: string(pay.ID),
			Amount:    400_00,
			Reason:    "typo",
			ActorID:   "manager-1",
		})
		assert.ErrorIs(t, err, domainpayment.ErrAmountExceedsAvailable)
	})

	t.Run("unknown payment", func(t *testing.T) {
		_, err := f.payments.Refund(ctx, RefundParams{
			TenantID:  f.tenantID,
			PaymentID: "missing",
			Amount:    100_00,
			Reason:    "typo",
			ActorID:   "manager-1",
		})
		assert.ErrorIs(t, err, domainpayment.ErrPaymentNotFound)
	})
}

func TestListForReservationSkipsDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.payments.Record(ctx, f.recordParams(100_00))
	require.NoError(t, err)
	second, err := f.payments.Record(ctx, f.recordParams(50_00))
	require.NoError(t, err)

	second.Deactivate(fixedNow)
	require.NoError(t, f.factory.PaymentRepo.Save(ctx, second))

	active, err := f.payments.ListForReservation(ctx, f.tenantID, string(f.reservation.ID))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}
