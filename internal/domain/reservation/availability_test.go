package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/domain/room"
	"innkeeper/internal/domain/tenant"
)

// stubRepository serves a fixed set of blocking reservations; only the methods
// the checker touches are implemented.
type stubRepository struct {
	Repository
	blocking []*Reservation
}

func (s stubRepository) ListBlockingByRoom(ctx context.Context, tenantID tenant.ID, roomID room.ID) ([]*Reservation, error) {
	return s.blocking, nil
}

func blockingReservation(t *testing.T, id string, checkInDay, checkOutDay int, status Status) *Reservation {
	t.Helper()
	rsv := newTestReservation(t)
	rsv.ID = ID(id)
	rsv.ConfirmationCode = "RSV-" + id
	rsv.Stay = testStay(t, checkInDay, checkOutDay)
	rsv.Status = status
	return rsv
}

func TestCheckerIsAvailable(t *testing.T) {
	existing := blockingReservation(t, "EXISTING1", 10, 12, StatusConfirmed)
	checker := Checker{Reservations: stubRepository{blocking: []*Reservation{existing}}}

	query := func(checkInDay, checkOutDay int) AvailabilityQuery {
		return AvailabilityQuery{
			TenantID: "tenant-1",
			RoomID:   "room-1",
			CheckIn:  time.Date(2026, time.June, checkInDay, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, time.June, checkOutDay, 0, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name          string
		checkInDay    int
		checkOutDay   int
		wantAvailable bool
	}{
		{"back to back after existing check-out", 12, 14, true},
		{"back to back before existing check-in", 8, 10, true},
		{"overlapping front", 9, 11, false},
		{"overlapping back", 11, 13, false},
		{"identical range", 10, 12, false},
		{"surrounding", 9, 13, false},
		{"disjoint later", 20, 22, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.IsAvailable(context.Background(), query(tt.checkInDay, tt.checkOutDay))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, got.Available)
			if tt.wantAvailable {
				assert.Nil(t, got.Conflict)
			} else {
				require.NotNil(t, got.Conflict)
				assert.Equal(t, "RSV-EXISTING1", got.Conflict.ConfirmationCode)
				assert.Equal(t, StatusConfirmed, got.Conflict.Status)
			}
		})
	}
}

func TestCheckerIgnoresNonBlockingStatuses(t *testing.T) {
	cancelled := blockingReservation(t, "CANCELLED1", 10, 12, StatusCancelled)
	checkedOut := blockingReservation(t, "CHECKEDOUT", 10, 12, StatusCheckedOut)
	// the repository contract already filters these; the checker double-checks
	checker := Checker{Reservations: stubRepository{blocking: []*Reservation{cancelled, checkedOut}}}

	got, err := checker.IsAvailable(context.Background(), AvailabilityQuery{
		TenantID: "tenant-1",
		RoomID:   "room-1",
		CheckIn:  time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestCheckerExcludesSelf(t *testing.T) {
	existing := blockingReservation(t, "SELF1", 10, 12, StatusPending)
	checker := Checker{Reservations: stubRepository{blocking: []*Reservation{existing}}}

	got, err := checker.IsAvailable(context.Background(), AvailabilityQuery{
		TenantID:             "tenant-1",
		RoomID:               "room-1",
		CheckIn:              time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:             time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
		ExcludeReservationID: existing.ID,
	})
	require.NoError(t, err)
	assert.True(t, got.Available, "a reservation never conflicts with itself")
}
