package annotations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type BoxSequenceRepo interface {
	// Allocate hands out count consecutive box numbers for the inspection
	// and advances the counter. Safe under concurrent callers.
	Allocate(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, count int) ([]int, error)

	// Peek returns the next number that Allocate would hand out, without
	// consuming it. Returns 1 when no counter row exists yet.
	Peek(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (int, error)

	// Repair resets the counter to 1 + the highest box number on any active
	// annotation of the inspection.
	Repair(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (int, error)

	DeleteByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) error
}

type boxSequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBoxSequenceRepo(db *gorm.DB, baseLog *logger.Logger) BoxSequenceRepo {
	return &boxSequenceRepo{db: db, log: baseLog.With("repo", "BoxSequenceRepo")}
}

func (r *boxSequenceRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *boxSequenceRepo) Allocate(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, count int) ([]int, error) {
	if count <= 0 {
		return nil, apperr.Validation("allocation count must be positive, got %d", count)
	}
	t := r.resolve(tx)
	var numbers []int
	err := t.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		// Insert-if-absent so the FOR UPDATE read below always has a row
		// to lock; two racing first allocations serialize on the insert.
		seed := types.BoxNumberSequence{InspectionID: inspectionID, NextBoxNumber: 1}
		if err := txx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var seq types.BoxNumberSequence
		if err := txx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("inspection_id = ?", inspectionID).
			Limit(1).
			Find(&seq).Error; err != nil {
			return err
		}
		if seq.InspectionID == uuid.Nil {
			return fmt.Errorf("counter row missing for inspection %s", inspectionID)
		}

		numbers = make([]int, count)
		for i := range numbers {
			numbers[i] = seq.NextBoxNumber + i
		}
		return txx.Model(&types.BoxNumberSequence{}).
			Where("inspection_id = ?", inspectionID).
			Updates(map[string]interface{}{
				"next_box_number": seq.NextBoxNumber + count,
				"last_updated_at": gorm.Expr("now()"),
			}).Error
	})
	if err != nil {
		r.log.Error("Box number allocation failed", "inspection_id", inspectionID, "error", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrSequenceUnavailable, err)
	}
	return numbers, nil
}

func (r *boxSequenceRepo) Peek(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (int, error) {
	t := r.resolve(tx)
	var seq types.BoxNumberSequence
	if err := t.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Limit(1).
		Find(&seq).Error; err != nil {
		return 0, err
	}
	if seq.InspectionID == uuid.Nil {
		return 1, nil
	}
	return seq.NextBoxNumber, nil
}

func (r *boxSequenceRepo) Repair(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (int, error) {
	t := r.resolve(tx)
	var next int
	err := t.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var maxBox *int
		if err := txx.Model(&types.Annotation{}).
			Where("inspection_id = ? AND is_active = ?", inspectionID, true).
			Select("MAX(box_number)").
			Scan(&maxBox).Error; err != nil {
			return err
		}
		next = 1
		if maxBox != nil {
			next = *maxBox + 1
		}
		seq := types.BoxNumberSequence{InspectionID: inspectionID, NextBoxNumber: next}
		return txx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "inspection_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"next_box_number": next,
				"last_updated_at": gorm.Expr("now()"),
			}),
		}).Create(&seq).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperr.ErrSequenceUnavailable, err)
	}
	r.log.Info("Repaired box number counter", "inspection_id", inspectionID, "next_box_number", next)
	return next, nil
}

func (r *boxSequenceRepo) DeleteByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) error {
	t := r.resolve(tx)
	return t.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Delete(&types.BoxNumberSequence{}).Error
}
