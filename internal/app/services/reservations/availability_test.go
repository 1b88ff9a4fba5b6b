package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/money"
)

// addRoom registers a second single-bed room on the fixture property.
func (f *fixture) addRoom(t *testing.T, id string, adults int) *domainroom.Room {
	t.Helper()
	rm, err := domainroom.New(domainroom.CreateParams{
		ID:           domainroom.ID(id),
		TenantID:     f.property.TenantID,
		PropertyID:   f.property.ID,
		NameOrNumber: id,
		Type:         domainroom.TypeRoom,
		Capacity:     domainroom.Capacity{Adults: adults},
		Rate:         domainroom.Rate{Base: money.Must(80_00, "USD")},
		Now:          fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.RoomRepo.Save(context.Background(), rm))
	return rm
}

func (f *fixture) availabilityParams() CheckAvailabilityParams {
	return CheckAvailabilityParams{
		TenantID:   f.tenantID,
		PropertyID: string(f.property.ID),
		CheckIn:    time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC),
		Adults:     2,
	}
}

func TestCheckAvailabilityOffersFreeRooms(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "room-102", 2)
	ctx := context.Background()

	offers, err := f.service.CheckAvailability(ctx, f.availabilityParams())
	require.NoError(t, err)
	require.Len(t, offers, 2)
	for _, offer := range offers {
		assert.Equal(t, 3, offer.Quote.Nights)
		assert.Positive(t, offer.Quote.Total.Amount)
	}
}

func TestCheckAvailabilityExcludesBookedRoom(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "room-102", 2)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.createParams())
	require.NoError(t, err)

	offers, err := f.service.CheckAvailability(ctx, f.availabilityParams())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, domainroom.ID("room-102"), offers[0].Room.ID)
}

func TestCheckAvailabilityFilters(t *testing.T) {
	ctx := context.Background()

	t.Run("party too large", func(t *testing.T) {
		f := newFixture(t)
		f.addRoom(t, "room-102", 1)
		params := f.availabilityParams()
		params.Adults = 2
		offers, err := f.service.CheckAvailability(ctx, params)
		require.NoError(t, err)
		require.Len(t, offers, 1)
		assert.Equal(t, f.room.ID, offers[0].Room.ID)
	})

	t.Run("maintenance room hidden", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.room.SetStatus(domainroom.StatusMaintenance, fixedNow))
		require.NoError(t, f.factory.RoomRepo.Save(ctx, f.room))
		offers, err := f.service.CheckAvailability(ctx, f.availabilityParams())
		require.NoError(t, err)
		assert.Empty(t, offers)
	})

	t.Run("deactivated room hidden", func(t *testing.T) {
		f := newFixture(t)
		f.room.Deactivate(fixedNow)
		require.NoError(t, f.factory.RoomRepo.Save(ctx, f.room))
		offers, err := f.service.CheckAvailability(ctx, f.availabilityParams())
		require.NoError(t, err)
		assert.Empty(t, offers)
	})

	t.Run("inverted dates rejected", func(t *testing.T) {
		f := newFixture(t)
		params := f.availabilityParams()
		params.CheckIn, params.CheckOut = params.CheckOut, params.CheckIn
		_, err := f.service.CheckAvailability(ctx, params)
		assert.Error(t, err)
	})
}

func TestCheckAvailabilityIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.CheckAvailability(ctx, f.availabilityParams())
	require.NoError(t, err)
	second, err := f.service.CheckAvailability(ctx, f.availabilityParams())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Room.ID, second[i].Room.ID)
		assert.Equal(t, first[i].Quote.Total, second[i].Quote.Total)
	}
}
