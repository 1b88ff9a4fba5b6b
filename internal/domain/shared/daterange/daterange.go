package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: check-out must be after check-in")
	ErrZeroDate     = errors.New("daterange: both dates are required")
)

// DateRange is a half-open stay interval [CheckIn, CheckOut) at day granularity.
// Both endpoints are normalized to midnight UTC; a check-out on the same day as
// another stay's check-in does not overlap it.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a normalized range, rejecting inverted or empty intervals.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return DateRange{}, ErrZeroDate
	}
	in := Normalize(checkIn)
	out := Normalize(checkOut)
	if !out.After(in) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

// Normalize truncates a timestamp to midnight UTC.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the stay length in calendar nights, always >= 1 for a valid range.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges intersect.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// Contains reports whether the given day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := Normalize(day)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}
