package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceCounter backs the human-readable document numbers. One row per
// prefix and year, bumped inside a transaction so numbers never repeat.
type SequenceCounter struct {
	Prefix string `gorm:"type:varchar(20);primaryKey"`
	Year   int    `gorm:"primaryKey"`
	Value  int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// nextNumber produces the next document number for a prefix, e.g.
// RES-2026-00042
func nextNumber(ctx context.Context, db *gorm.DB, prefix string) (string, error) {
	year := time.Now().Year()
	var value int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		// sqlite has no row locks; its single writer covers us in tests
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		counter := SequenceCounter{Prefix: prefix, Year: year}
		if err := query.FirstOrCreate(&counter, SequenceCounter{Prefix: prefix, Year: year}).Error; err != nil {
			return err
		}
		counter.Value++
		value = counter.Value
		return tx.Model(&SequenceCounter{}).
			Where("prefix = ? AND year = ?", prefix, year).
			Update("value", counter.Value).Error
	})
	if err != nil {
		return "", fmt.Errorf("generate %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, year, value), nil
}
