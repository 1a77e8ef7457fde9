package valueobject

import (
	"errors"
	"time"
)

// DateRange is a half-open date interval [From, To): the end date is
// excluded, so a stay departing on a given day leaves that day free for a
// new arrival on the same unit.
type DateRange struct {
	from time.Time
	to   time.Time
}

// NewDateRange creates a DateRange. Both dates are truncated to midnight UTC;
// To must be strictly after From.
func NewDateRange(from, to time.Time) (DateRange, error) {
	f := TruncateToDay(from)
	t := TruncateToDay(to)
	if !t.After(f) {
		return DateRange{}, errors.New("range end must be after range start")
	}
	return DateRange{from: f, to: t}, nil
}

// TruncateToDay normalizes a timestamp to midnight UTC of its calendar day
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// From returns the inclusive start date
func (r DateRange) From() time.Time {
	return r.from
}

// To returns the exclusive end date
func (r DateRange) To() time.Time {
	return r.to
}

// Nights returns the number of nights covered by the range
func (r DateRange) Nights() int {
	return int(r.to.Sub(r.from).Hours() / 24)
}

// Overlaps reports whether two half-open ranges intersect:
// other.from < r.to && other.to > r.from. Ranges that merely touch
// (one ends where the other begins) do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return other.from.Before(r.to) && other.to.After(r.from)
}

// Contains reports whether the given date falls inside the range
func (r DateRange) Contains(date time.Time) bool {
	d := TruncateToDay(date)
	return !d.Before(r.from) && d.Before(r.to)
}

// EachNight calls fn once per night in the range, in order
func (r DateRange) EachNight(fn func(date time.Time)) {
	for d := r.from; d.Before(r.to); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// IsZero returns true for the zero-value range
func (r DateRange) IsZero() bool {
	return r.from.IsZero() && r.to.IsZero()
}
