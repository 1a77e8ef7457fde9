package persistence

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/settlement"
	"github.com/pms/backend/internal/domain/shared"
)

// GormReservationRepository implements reservation.ReservationRepository
// using GORM. It also serves as the settlement revenue source and the
// dashboard month-to-date revenue source, since both read from the same
// checked-out reservation data.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation with its stay and service lines
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var res reservation.Reservation
	err := dbFor(ctx, r.db).WithContext(ctx).
		Preload("UnitStays").
		Preload("Services").
		First(&res, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// FindByNumber finds a reservation by its reservation number
func (r *GormReservationRepository) FindByNumber(ctx context.Context, number string) (*reservation.Reservation, error) {
	var res reservation.Reservation
	err := dbFor(ctx, r.db).WithContext(ctx).
		Preload("UnitStays").
		Preload("Services").
		First(&res, "reservation_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// FindAll returns reservations matching the filter. Search matches the
// reservation number.
func (r *GormReservationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]reservation.Reservation, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).
		Model(&reservation.Reservation{}).
		Preload("UnitStays").
		Preload("Services")
	if filter.Search != "" {
		query = query.Where("reservation_number LIKE ?", "%"+filter.Search+"%")
	}
	var reservations []reservation.Reservation
	if err := applyFilter(query, filter).Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Save creates or updates the reservation and replaces its line items
func (r *GormReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	return dbFor(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveReservationTx(tx, res)
	})
}

func saveReservationTx(tx *gorm.DB, res *reservation.Reservation) error {
	if err := tx.Omit("UnitStays", "Services").Save(res).Error; err != nil {
		return err
	}

	// Replace stay lines: delete lines gone from the aggregate, upsert
	// the rest
	stayIDs := make([]uuid.UUID, len(res.UnitStays))
	for i := range res.UnitStays {
		res.UnitStays[i].ReservationID = res.ID
		stayIDs[i] = res.UnitStays[i].ID
	}
	query := tx.Where("reservation_id = ?", res.ID)
	if len(stayIDs) > 0 {
		query = query.Where("id NOT IN ?", stayIDs)
	}
	if err := query.Delete(&reservation.UnitStay{}).Error; err != nil {
		return err
	}
	for i := range res.UnitStays {
		if err := tx.Save(&res.UnitStays[i]).Error; err != nil {
			return err
		}
	}

	serviceIDs := make([]uuid.UUID, len(res.Services))
	for i := range res.Services {
		res.Services[i].ReservationID = res.ID
		serviceIDs[i] = res.Services[i].ID
	}
	query = tx.Where("reservation_id = ?", res.ID)
	if len(serviceIDs) > 0 {
		query = query.Where("id NOT IN ?", serviceIDs)
	}
	if err := query.Delete(&reservation.ServiceConsumption{}).Error; err != nil {
		return err
	}
	for i := range res.Services {
		if err := tx.Save(&res.Services[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormReservationRepository) SaveWithLock(ctx context.Context, res *reservation.Reservation) error {
	return dbFor(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		err := tx.Model(&reservation.Reservation{}).
			Where("id = ?", res.ID).
			Select("version").
			Scan(&currentVersion).Error
		if err != nil {
			return err
		}
		if currentVersion == 0 {
			return shared.ErrNotFound
		}
		if currentVersion != res.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The reservation has been modified by another user")
		}
		res.Version++
		res.UpdatedAt = time.Now()
		return saveReservationTx(tx, res)
	})
}

// Delete removes a draft reservation and its line items
func (r *GormReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reservation_id = ?", id).Delete(&reservation.UnitStay{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reservation_id = ?", id).Delete(&reservation.ServiceConsumption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&reservation.Reservation{}, "id = ?", id).Error
	})
}

// GenerateNumber generates the next reservation number
func (r *GormReservationRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextNumber(ctx, r.db, "RES")
}

// ConfirmWithUnitLocks runs fn and the Booked unit writes in one
// serializable transaction. On PostgreSQL it takes one advisory
// transaction lock per unit, in sorted order so two overlapping
// confirmations cannot deadlock; whichever acquires last re-checks
// availability after the first has committed its Booked rows.
func (r *GormReservationRepository) ConfirmWithUnitLocks(ctx context.Context, res *reservation.Reservation, fn reservation.ConfirmFunc) error {
	db := dbFor(ctx, r.db).WithContext(ctx)
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	if db.Dialector.Name() == "sqlite" {
		// sqlite serializes writers itself and has no advisory locks
		opts = nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			unitIDs := make([]string, 0, len(res.UnitStays))
			for i := range res.UnitStays {
				unitIDs = append(unitIDs, res.UnitStays[i].UnitID.String())
			}
			sort.Strings(unitIDs)
			for _, id := range unitIDs {
				if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", id).Error; err != nil {
					return err
				}
			}
		}

		txCtx := withTx(ctx, tx)
		if err := fn(txCtx, res); err != nil {
			return err
		}
		if err := saveReservationTx(tx, res); err != nil {
			return err
		}
		for i := range res.UnitStays {
			err := tx.Model(&inventory.Unit{}).
				Where("id = ?", res.UnitStays[i].UnitID).
				Update("status", inventory.UnitStatusBooked).Error
			if err != nil {
				return err
			}
		}
		return nil
	}, opts)
}

// FindBlockingStays returns the stay lines on the unit whose parent
// reservation currently holds it
func (r *GormReservationRepository) FindBlockingStays(ctx context.Context, unitID uuid.UUID) ([]reservation.BlockingStay, error) {
	var stays []reservation.BlockingStay
	err := dbFor(ctx, r.db).WithContext(ctx).
		Table("reservation_unit_stays AS s").
		Select("s.reservation_id, s.unit_id, s.check_in, s.check_out").
		Joins("JOIN reservations r ON r.id = s.reservation_id").
		Where("s.unit_id = ? AND r.status IN ?", unitID,
			[]reservation.ReservationStatus{reservation.StatusConfirmed, reservation.StatusCheckedIn}).
		Scan(&stays).Error
	if err != nil {
		return nil, err
	}
	return stays, nil
}

// CountByStatus counts reservations in the given status
func (r *GormReservationRepository) CountByStatus(ctx context.Context, status reservation.ReservationStatus) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&reservation.Reservation{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountArrivals counts confirmed reservations checking in on the day
func (r *GormReservationRepository) CountArrivals(ctx context.Context, day time.Time) (int64, error) {
	start, end := dayBounds(day)
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&reservation.Reservation{}).
		Where("status = ? AND check_in >= ? AND check_in < ?", reservation.StatusConfirmed, start, end).
		Count(&count).Error
	return count, err
}

// CountDepartures counts in-house reservations checking out on the day
func (r *GormReservationRepository) CountDepartures(ctx context.Context, day time.Time) (int64, error) {
	start, end := dayBounds(day)
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&reservation.Reservation{}).
		Where("status = ? AND check_out >= ? AND check_out < ?", reservation.StatusCheckedIn, start, end).
		Count(&count).Error
	return count, err
}

// CountInHouseGuests counts distinct guests currently checked in
func (r *GormReservationRepository) CountInHouseGuests(ctx context.Context) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&reservation.Reservation{}).
		Where("status = ?", reservation.StatusCheckedIn).
		Distinct("guest_id").
		Count(&count).Error
	return count, err
}

type settledRevenueRow struct {
	ReservationID     uuid.UUID
	ReservationNumber string
	UnitID            uuid.UUID
	UnitCode          string
	CheckIn           time.Time
	CheckOut          time.Time
	Nights            int
	LineTotal         decimal.Decimal
}

// FindSettledRevenue implements settlement.RevenueSource. A stay line is
// settled in a period when its parent reservation is checked out and the
// stay falls entirely inside the period; a stay spanning a month boundary
// waits for a period that covers it in full.
func (r *GormReservationRepository) FindSettledRevenue(ctx context.Context, unitIDs []uuid.UUID, periodStart, periodEnd time.Time) ([]settlement.RevenueInput, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	var rows []settledRevenueRow
	err := dbFor(ctx, r.db).WithContext(ctx).
		Table("reservation_unit_stays AS s").
		Select("s.reservation_id, r.reservation_number, s.unit_id, s.unit_code, s.check_in, s.check_out, s.nights, s.line_total").
		Joins("JOIN reservations r ON r.id = s.reservation_id").
		Where("s.unit_id IN ? AND r.status = ?", unitIDs, reservation.StatusCheckedOut).
		Where("s.check_in >= ? AND s.check_out <= ?", periodStart, periodEnd).
		Order("s.check_in asc, r.reservation_number asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	inputs := make([]settlement.RevenueInput, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, settlement.RevenueInput{
			ReservationID:     row.ReservationID,
			ReservationNumber: row.ReservationNumber,
			UnitID:            row.UnitID,
			UnitCode:          row.UnitCode,
			CheckIn:           row.CheckIn,
			CheckOut:          row.CheckOut,
			Nights:            row.Nights,
			Amount:            row.LineTotal,
		})
	}
	return inputs, nil
}

// MonthToDateRevenue sums checked-out reservation totals for the dashboard
func (r *GormReservationRepository) MonthToDateRevenue(ctx context.Context, monthStart, now time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&reservation.Reservation{}).
		Select("SUM(total_amount)").
		Where("status = ? AND checked_out_at >= ? AND checked_out_at <= ?", reservation.StatusCheckedOut, monthStart, now).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
