package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/operations"
	"github.com/pms/backend/internal/domain/pricing"
	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/settlement"
	"github.com/pms/backend/internal/infrastructure/config"
)

// Database holds the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase creates a postgres connection from the configuration
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db}, nil
}

// NewSQLiteDatabase opens an in-memory sqlite database. Repository tests
// run against it; advisory locking degrades to plain transactions there.
func NewSQLiteDatabase() (*Database, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &Database{DB: db}, nil
}

// Migrate creates or updates the schema for every aggregate and child table
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&property.Property{},
		&property.Owner{},
		&property.Guest{},
		&inventory.UnitType{},
		&inventory.Unit{},
		&pricing.RatePlan{},
		&reservation.Reservation{},
		&reservation.UnitStay{},
		&reservation.ServiceConsumption{},
		&settlement.OwnerSettlement{},
		&settlement.RevenueDetail{},
		&settlement.ExpenseDetail{},
		&operations.HousekeepingTask{},
		&operations.MaintenanceRequest{},
		&GuestInvoice{},
		&GuestInvoiceLine{},
		&JournalEntry{},
		&JournalEntryLine{},
		&PaymentVoucher{},
		&SequenceCounter{},
	)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}

type txContextKey struct{}

// withTx binds a transaction to the context so repository calls made
// inside a transactional closure run on the same connection
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// dbFor returns the transaction bound to ctx, or the fallback connection
func dbFor(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
