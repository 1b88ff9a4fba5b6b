package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		wantErr  error
	}{
		{
			name:     "valid range",
			checkIn:  day(2026, time.January, 10),
			checkOut: day(2026, time.January, 12),
		},
		{
			name:     "zero check-in",
			checkOut: day(2026, time.January, 12),
			wantErr:  ErrZeroDate,
		},
		{
			name:    "zero check-out",
			checkIn: day(2026, time.January, 10),
			wantErr: ErrZeroDate,
		},
		{
			name:     "inverted",
			checkIn:  day(2026, time.January, 12),
			checkOut: day(2026, time.January, 10),
			wantErr:  ErrInvalidRange,
		},
		{
			name:     "same day",
			checkIn:  day(2026, time.January, 10),
			checkOut: day(2026, time.January, 10),
			wantErr:  ErrInvalidRange,
		},
		{
			name: "same day different hours collapses to empty",
			// normalization drops the time of day before comparing
			checkIn:  time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC),
			checkOut: time.Date(2026, time.January, 10, 23, 0, 0, 0, time.UTC),
			wantErr:  ErrInvalidRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.checkIn, tt.checkOut)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Normalize(tt.checkIn), r.CheckIn)
			assert.Equal(t, Normalize(tt.checkOut), r.CheckOut)
		})
	}
}

func TestNewNormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	r, err := New(
		time.Date(2026, time.March, 5, 14, 30, 0, 0, loc),
		time.Date(2026, time.March, 8, 9, 15, 0, 0, loc),
	)
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.March, 5), r.CheckIn)
	assert.Equal(t, day(2026, time.March, 8), r.CheckOut)
	assert.Equal(t, time.UTC, r.CheckIn.Location())
}

func TestNights(t *testing.T) {
	r, err := New(day(2026, time.January, 10), day(2026, time.January, 13))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Nights())

	single, err := New(day(2026, time.January, 10), day(2026, time.January, 11))
	require.NoError(t, err)
	assert.Equal(t, 1, single.Nights())
}

func TestOverlaps(t *testing.T) {
	base := DateRange{CheckIn: day(2026, time.January, 10), CheckOut: day(2026, time.January, 12)}

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{
			name:  "back to back after",
			other: DateRange{CheckIn: day(2026, time.January, 12), CheckOut: day(2026, time.January, 14)},
			want:  false,
		},
		{
			name:  "back to back before",
			other: DateRange{CheckIn: day(2026, time.January, 8), CheckOut: day(2026, time.January, 10)},
			want:  false,
		},
		{
			name:  "partial overlap front",
			other: DateRange{CheckIn: day(2026, time.January, 9), CheckOut: day(2026, time.January, 11)},
			want:  true,
		},
		{
			name:  "partial overlap back",
			other: DateRange{CheckIn: day(2026, time.January, 11), CheckOut: day(2026, time.January, 13)},
			want:  true,
		},
		{
			name:  "fully contained",
			other: DateRange{CheckIn: day(2026, time.January, 10), CheckOut: day(2026, time.January, 11)},
			want:  true,
		},
		{
			name:  "fully containing",
			other: DateRange{CheckIn: day(2026, time.January, 5), CheckOut: day(2026, time.January, 20)},
			want:  true,
		},
		{
			name:  "disjoint",
			other: DateRange{CheckIn: day(2026, time.February, 1), CheckOut: day(2026, time.February, 3)},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestContains(t *testing.T) {
	r := DateRange{CheckIn: day(2026, time.January, 10), CheckOut: day(2026, time.January, 12)}
	assert.True(t, r.Contains(day(2026, time.January, 10)))
	assert.True(t, r.Contains(day(2026, time.January, 11)))
	assert.False(t, r.Contains(day(2026, time.January, 12)), "check-out day is exclusive")
	assert.False(t, r.Contains(day(2026, time.January, 9)))
}
