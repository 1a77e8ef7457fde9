package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// BlockingStay is a stored unit stay belonging to a reservation whose
// status holds the unit (Confirmed or Checked-In)
type BlockingStay struct {
	ReservationID uuid.UUID
	UnitID        uuid.UUID
	CheckIn       time.Time
	CheckOut      time.Time
}

// StayFinder looks up the stay lines that currently block a unit
type StayFinder interface {
	// FindBlockingStays returns all unit stays on the given unit whose
	// parent reservation is in a blocking status (Confirmed, Checked-In)
	FindBlockingStays(ctx context.Context, unitID uuid.UUID) ([]BlockingStay, error)
}

// AvailabilityService decides whether a unit is free for a candidate date
// range. A candidate [check_in, check_out) conflicts with an existing stay
// [existing_in, existing_out) iff existing_in < check_out AND
// existing_out > check_in; the checkout day itself is free for a new
// arrival.
type AvailabilityService struct {
	stays StayFinder
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(stays StayFinder) *AvailabilityService {
	return &AvailabilityService{stays: stays}
}

// IsAvailable reports whether the unit has no conflicting blocking stay in
// the candidate range. exclude skips stays belonging to the reservation
// under edit (uuid.Nil to exclude nothing).
func (s *AvailabilityService) IsAvailable(ctx context.Context, unitID uuid.UUID, candidate valueobject.DateRange, exclude uuid.UUID) (bool, error) {
	existing, err := s.stays.FindBlockingStays(ctx, unitID)
	if err != nil {
		return false, err
	}
	for _, stay := range existing {
		if exclude != uuid.Nil && stay.ReservationID == exclude {
			continue
		}
		r, err := valueobject.NewDateRange(stay.CheckIn, stay.CheckOut)
		if err != nil {
			continue
		}
		if candidate.Overlaps(r) {
			return false, nil
		}
	}
	return true, nil
}

// CheckReservation evaluates availability per unit-stay line, since a
// multi-unit reservation can mix available and unavailable units. It
// returns the unit codes that failed the check.
func (s *AvailabilityService) CheckReservation(ctx context.Context, r *Reservation) ([]string, error) {
	var conflicted []string
	for i := range r.UnitStays {
		stay := &r.UnitStays[i]
		rng, err := stay.Range()
		if err != nil {
			conflicted = append(conflicted, stay.UnitCode)
			continue
		}
		ok, err := s.IsAvailable(ctx, stay.UnitID, rng, r.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			conflicted = append(conflicted, stay.UnitCode)
		}
	}
	return conflicted, nil
}
