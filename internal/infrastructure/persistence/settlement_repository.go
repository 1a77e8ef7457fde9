package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/settlement"
	"github.com/pms/backend/internal/domain/shared"
)

// GormSettlementRepository implements settlement.SettlementRepository
// using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByID finds a settlement with its detail rows; absent settlements
// return nil
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.OwnerSettlement, error) {
	var stl settlement.OwnerSettlement
	err := dbFor(ctx, r.db).WithContext(ctx).
		Preload("RevenueDetails").
		Preload("ExpenseDetails").
		First(&stl, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stl, nil
}

// FindByNumber finds a settlement by its settlement number
func (r *GormSettlementRepository) FindByNumber(ctx context.Context, number string) (*settlement.OwnerSettlement, error) {
	var stl settlement.OwnerSettlement
	err := dbFor(ctx, r.db).WithContext(ctx).
		Preload("RevenueDetails").
		Preload("ExpenseDetails").
		First(&stl, "settlement_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stl, nil
}

// FindAll returns a page of settlements matching the filter
func (r *GormSettlementRepository) FindAll(ctx context.Context, filter settlement.SettlementFilter) (*shared.Paginated[settlement.OwnerSettlement], error) {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&settlement.OwnerSettlement{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("settlement_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var settlements []settlement.OwnerSettlement
	if err := applyFilter(query, filter.Filter).Find(&settlements).Error; err != nil {
		return nil, err
	}

	page, pageSize := pageOf(filter.Filter)
	result := shared.NewPaginated(settlements, total, page, pageSize)
	return &result, nil
}

// ExistsForPeriod reports whether a non-cancelled settlement already covers
// the owner and period
func (r *GormSettlementRepository) ExistsForPeriod(ctx context.Context, ownerID uuid.UUID, periodStart, periodEnd time.Time, exclude uuid.UUID) (bool, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).
		Model(&settlement.OwnerSettlement{}).
		Where("owner_id = ? AND period_start = ? AND period_end = ?", ownerID, periodStart, periodEnd).
		Where("status <> ?", settlement.SettlementStatusCancelled)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists the aggregate and replaces its detail rows. Calculate
// rebuilds the details from scratch, so stale rows are deleted outright
// rather than diffed.
func (r *GormSettlementRepository) Save(ctx context.Context, stl *settlement.OwnerSettlement) error {
	return dbFor(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("RevenueDetails", "ExpenseDetails").Save(stl).Error; err != nil {
			return err
		}
		if err := tx.Where("settlement_id = ?", stl.ID).Delete(&settlement.RevenueDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("settlement_id = ?", stl.ID).Delete(&settlement.ExpenseDetail{}).Error; err != nil {
			return err
		}
		for i := range stl.RevenueDetails {
			stl.RevenueDetails[i].SettlementID = stl.ID
			if err := tx.Create(&stl.RevenueDetails[i]).Error; err != nil {
				return err
			}
		}
		for i := range stl.ExpenseDetails {
			stl.ExpenseDetails[i].SettlementID = stl.ID
			if err := tx.Create(&stl.ExpenseDetails[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a settlement and its detail rows
func (r *GormSettlementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("settlement_id = ?", id).Delete(&settlement.RevenueDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("settlement_id = ?", id).Delete(&settlement.ExpenseDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&settlement.OwnerSettlement{}, "id = ?", id).Error
	})
}

// GenerateNumber generates the next settlement number
func (r *GormSettlementRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextNumber(ctx, r.db, "SET")
}

// SumNetPayableByStatus sums net payable across settlements in a status
func (r *GormSettlementRepository) SumNetPayableByStatus(ctx context.Context, status settlement.SettlementStatus) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&settlement.OwnerSettlement{}).
		Select("SUM(net_payable)").
		Where("status = ?", status).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
