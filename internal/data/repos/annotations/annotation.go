package annotations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

// Edits carries the mutable fields a caller may change when saving a new
// version of an annotation. Lineage-invariant fields (inspection, box number,
// source) are never part of an edit.
type Edits struct {
	BboxX1, BboxY1, BboxX2, BboxY2 int

	ClassID    *int
	ClassName  *string
	Confidence *float64
	Comments   *string

	SeverityScore *float64
	Flagged       bool
}

type AnnotationRepo interface {
	CreateRoots(ctx context.Context, tx *gorm.DB, rows []*types.Annotation) ([]*types.Annotation, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Annotation, error)
	GetActiveByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.Annotation, error)
	GetAllByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.Annotation, error)
	GetByInspectionAndSource(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, source types.AnnotationSource) ([]*types.Annotation, error)
	GetLineage(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) ([]*types.Annotation, error)
	GetLineageHeads(ctx context.Context, tx *gorm.DB, lineageIDs []uuid.UUID) (map[uuid.UUID]*types.Annotation, error)

	SaveNewVersion(ctx context.Context, tx *gorm.DB, existingID uuid.UUID, edits Edits, actor string) (*types.Annotation, error)
	MarkTerminal(ctx context.Context, tx *gorm.DB, id uuid.UUID, action types.AnnotationAction, actor string, comment *string) (*types.Annotation, error)

	CountActive(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (int64, error)
	PurgeByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) error
}

type annotationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationRepo {
	return &annotationRepo{db: db, log: baseLog.With("repo", "AnnotationRepo")}
}

func (r *annotationRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// CreateRoots inserts version-1 rows. Each row's lineage id is its own id;
// any caller-provided lineage id is overwritten.
func (r *annotationRepo) CreateRoots(ctx context.Context, tx *gorm.DB, rows []*types.Annotation) ([]*types.Annotation, error) {
	t := r.resolve(tx)
	if len(rows) == 0 {
		return []*types.Annotation{}, nil
	}
	now := time.Now()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.LineageID = row.ID
		row.Version = 1
		row.ParentAnnotationID = nil
		row.ActionType = types.ActionCreated
		row.IsActive = true
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *annotationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Annotation, error) {
	t := r.resolve(tx)
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Annotation
	err := t.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *annotationRepo) GetActiveByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.Annotation, error) {
	t := r.resolve(tx)
	var out []*types.Annotation
	if inspectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("inspection_id = ? AND is_active = ?", inspectionID, true).
		Order("box_number ASC NULLS LAST, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *annotationRepo) GetAllByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.Annotation, error) {
	t := r.resolve(tx)
	var out []*types.Annotation
	if inspectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Order("lineage_id ASC, version DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *annotationRepo) GetByInspectionAndSource(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, source types.AnnotationSource) ([]*types.Annotation, error) {
	t := r.resolve(tx)
	var out []*types.Annotation
	if inspectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("inspection_id = ? AND source = ?", inspectionID, source).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetLineage returns every version in the chain containing annotationID,
// newest first. The denormalized lineage id makes this one indexed query.
func (r *annotationRepo) GetLineage(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) ([]*types.Annotation, error) {
	t := r.resolve(tx)
	row, err := r.GetByID(ctx, t, annotationID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.NotFound("annotation")
	}
	var out []*types.Annotation
	if err := t.WithContext(ctx).
		Where("lineage_id = ?", row.LineageID).
		Order("version DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetLineageHeads resolves the highest version of each given lineage.
func (r *annotationRepo) GetLineageHeads(ctx context.Context, tx *gorm.DB, lineageIDs []uuid.UUID) (map[uuid.UUID]*types.Annotation, error) {
	t := r.resolve(tx)
	heads := make(map[uuid.UUID]*types.Annotation, len(lineageIDs))
	if len(lineageIDs) == 0 {
		return heads, nil
	}
	var rows []*types.Annotation
	if err := t.WithContext(ctx).
		Where("lineage_id IN ?", lineageIDs).
		Order("version ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		heads[row.LineageID] = row
	}
	return heads, nil
}

// SaveNewVersion deactivates the row at existingID and inserts its successor
// as one transaction, so readers never observe zero or two active rows for
// the lineage. The active-row precondition is checked under a row lock:
// losing a race against a concurrent edit or delete surfaces StaleVersion
// (or LineageInactive when the lineage was terminated), never a silent
// overwrite.
func (r *annotationRepo) SaveNewVersion(ctx context.Context, tx *gorm.DB, existingID uuid.UUID, edits Edits, actor string) (*types.Annotation, error) {
	t := r.resolve(tx)
	var created *types.Annotation
	err := t.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var existing types.Annotation
		if err := txx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", existingID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}
		if existing.ID == uuid.Nil {
			return apperr.NotFound("annotation")
		}
		if !existing.IsActive {
			if existing.ActionType == types.ActionDeleted || existing.ActionType == types.ActionRejected {
				return fmt.Errorf("annotation %s: %w", existingID, apperr.ErrLineageInactive)
			}
			return fmt.Errorf("annotation %s: %w", existingID, apperr.ErrStaleVersion)
		}

		now := time.Now()
		if err := txx.Model(&types.Annotation{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"is_active":   false,
				"modified_by": actor,
				"modified_at": now,
			}).Error; err != nil {
			return err
		}

		next := existing.NewVersion()
		next.BboxX1 = edits.BboxX1
		next.BboxY1 = edits.BboxY1
		next.BboxX2 = edits.BboxX2
		next.BboxY2 = edits.BboxY2
		next.ClassID = edits.ClassID
		next.ClassName = edits.ClassName
		next.Confidence = edits.Confidence
		next.Comments = edits.Comments
		next.SeverityScore = edits.SeverityScore
		next.Flagged = edits.Flagged
		area := next.Area()
		next.SizePx = &area
		next.CreatedBy = actor
		next.CreatedAt = now

		if err := txx.Create(next).Error; err != nil {
			return err
		}
		created = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("Created new annotation version",
		"annotation_id", created.ID, "lineage_id", created.LineageID, "version", created.Version)
	return created, nil
}

// MarkTerminal mutates the row in place (no new version): approve keeps the
// row active, reject and delete clear the active flag for the whole lineage.
func (r *annotationRepo) MarkTerminal(ctx context.Context, tx *gorm.DB, id uuid.UUID, action types.AnnotationAction, actor string, comment *string) (*types.Annotation, error) {
	if !action.IsTerminal() {
		return nil, apperr.Validation("action %q is not terminal", action)
	}
	t := r.resolve(tx)
	var updated *types.Annotation
	err := t.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var row types.Annotation
		if err := txx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Limit(1).
			Find(&row).Error; err != nil {
			return err
		}
		if row.ID == uuid.Nil {
			return apperr.NotFound("annotation")
		}
		if !row.IsActive {
			if row.ActionType == types.ActionDeleted || row.ActionType == types.ActionRejected {
				return fmt.Errorf("annotation %s: %w", id, apperr.ErrLineageInactive)
			}
			return fmt.Errorf("annotation %s: %w", id, apperr.ErrStaleVersion)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"action_type": string(action),
			"modified_by": actor,
			"modified_at": now,
		}
		if comment != nil {
			updates["comments"] = *comment
		}
		if action == types.ActionDeleted || action == types.ActionRejected {
			updates["is_active"] = false
		}
		if err := txx.Model(&types.Annotation{}).
			Where("id = ?", row.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		row.ActionType = action
		row.ModifiedBy = &actor
		row.ModifiedAt = &now
		if comment != nil {
			row.Comments = comment
		}
		if action == types.ActionDeleted || action == types.ActionRejected {
			row.IsActive = false
		}
		updated = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *annotationRepo) CountActive(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (int64, error) {
	t := r.resolve(tx)
	var count int64
	if err := t.WithContext(ctx).
		Model(&types.Annotation{}).
		Where("inspection_id = ? AND is_active = ?", inspectionID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeByInspection hard-deletes every version row for the inspection. Only
// cascading inspection deletion calls this.
func (r *annotationRepo) PurgeByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) error {
	t := r.resolve(tx)
	if inspectionID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Delete(&types.Annotation{}).Error
}
