package idgen

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRow one named sequence in the id_sequences table.
// LastValue is the highest number reserved so far.
type SequenceRow struct {
	Name      string `gorm:"primaryKey;size:128"`
	LastValue int64  `gorm:"not null"`
}

func (SequenceRow) TableName() string {
	return "id_sequences"
}

// TableSequence emulates a sequence with a row per name, usable on every dialect
// GORM supports. Each reservation runs in its own transaction on db, independent of
// any unit of work in ctx, so a rollback never hands the same block out twice.
type TableSequence struct {
	db    *gorm.DB
	name  string
	start int64
	pool  *pool
}

func NewTableSequence(db *gorm.DB, name string, start, step int64) *TableSequence {
	s := &TableSequence{db: db, name: name, start: start}
	s.pool = newPool(step, s.reserve)
	return s
}

func (s *TableSequence) Name() string { return s.name }

func (s *TableSequence) Next(ctx context.Context) (int64, error) {
	return s.pool.nextValue(ctx)
}

func (s *TableSequence) SupportsBatchInserts() bool { return true }

func (s *TableSequence) reserve(ctx context.Context) (int64, error) {
	var row SequenceRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := SequenceRow{Name: s.name, LastValue: s.start - 1}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		if err := tx.Model(&SequenceRow{}).
			Where("name = ?", s.name).
			Update("last_value", gorm.Expr("last_value + ?", s.pool.step)).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", s.name).Take(&row).Error
	})
	if err != nil {
		return 0, fmt.Errorf("reserve block from sequence %s: %w", s.name, err)
	}
	return row.LastValue, nil
}
