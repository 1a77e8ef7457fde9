package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pms/backend/internal/domain/shared"
)

// ConfirmFunc re-validates and mutates a reservation inside the
// confirmation transaction, after the per-unit locks are held
type ConfirmFunc func(ctx context.Context, r *Reservation) error

// ReservationRepository defines persistence operations for reservations
type ReservationRepository interface {
	StayFinder

	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	FindByNumber(ctx context.Context, number string) (*Reservation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	SaveWithLock(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
	GenerateNumber(ctx context.Context) (string, error)

	// ConfirmWithUnitLocks runs fn and the resulting unit status writes in
	// one serializable transaction holding per-unit advisory locks, so the
	// availability re-check and the Booked writes cannot interleave with a
	// concurrent confirmation of an overlapping reservation.
	ConfirmWithUnitLocks(ctx context.Context, r *Reservation, fn ConfirmFunc) error

	CountByStatus(ctx context.Context, status ReservationStatus) (int64, error)
	// CountArrivals counts confirmed reservations checking in on the day
	CountArrivals(ctx context.Context, day time.Time) (int64, error)
	// CountDepartures counts in-house reservations checking out on the day
	CountDepartures(ctx context.Context, day time.Time) (int64, error)
	// CountInHouseGuests counts distinct guests currently checked in
	CountInHouseGuests(ctx context.Context) (int64, error)
}
