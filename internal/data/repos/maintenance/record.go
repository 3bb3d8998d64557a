package maintenance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type RecordRepo interface {
	// Create inserts the record together with its anomaly snapshots.
	Create(ctx context.Context, tx *gorm.DB, rec *types.MaintenanceRecord) (*types.MaintenanceRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MaintenanceRecord, error)
	GetByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.MaintenanceRecord, error)
	GetByTransformer(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID) ([]*types.MaintenanceRecord, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.MaintenanceRecord, error)
	Finalize(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MaintenanceRecord, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{db: db, log: baseLog.With("repo", "MaintenanceRecordRepo")}
}

func (r *recordRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *recordRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.MaintenanceRecord) (*types.MaintenanceRecord, error) {
	t := r.resolve(tx)
	if rec == nil || rec.RecordNumber == "" {
		return nil, apperr.Validation("record number is required")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = types.MaintenanceDraft
	}
	for i := range rec.Anomalies {
		if rec.Anomalies[i].ID == uuid.Nil {
			rec.Anomalies[i].ID = uuid.New()
		}
		rec.Anomalies[i].MaintenanceRecordID = rec.ID
	}
	if err := t.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *recordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MaintenanceRecord, error) {
	t := r.resolve(tx)
	var row types.MaintenanceRecord
	if err := t.WithContext(ctx).
		Preload("Anomalies").
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *recordRepo) GetByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.MaintenanceRecord, error) {
	t := r.resolve(tx)
	var out []*types.MaintenanceRecord
	if err := t.WithContext(ctx).
		Preload("Anomalies").
		Where("inspection_id = ?", inspectionID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) GetByTransformer(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID) ([]*types.MaintenanceRecord, error) {
	t := r.resolve(tx)
	var out []*types.MaintenanceRecord
	if err := t.WithContext(ctx).
		Preload("Anomalies").
		Where("transformer_id = ?", transformerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.MaintenanceRecord, error) {
	t := r.resolve(tx)
	existing, err := r.GetByID(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("maintenance record")
	}
	if existing.Status == types.MaintenanceFinalized {
		return nil, apperr.Validation("finalized records are read-only")
	}
	if len(updates) == 0 {
		return existing, nil
	}
	if err := t.WithContext(ctx).Model(&types.MaintenanceRecord{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, t, id)
}

func (r *recordRepo) Finalize(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MaintenanceRecord, error) {
	t := r.resolve(tx)
	res := t.WithContext(ctx).Model(&types.MaintenanceRecord{}).
		Where("id = ? AND status = ?", id, types.MaintenanceDraft).
		Update("status", types.MaintenanceFinalized)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.GetByID(ctx, t, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, apperr.NotFound("maintenance record")
		}
		return nil, apperr.Validation("record already finalized")
	}
	return r.GetByID(ctx, t, id)
}

func (r *recordRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := r.resolve(tx)
	existing, err := r.GetByID(ctx, t, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("maintenance record")
	}
	if existing.Status == types.MaintenanceFinalized {
		return apperr.Validation("finalized records cannot be deleted")
	}
	if err := t.WithContext(ctx).
		Where("maintenance_record_id = ?", id).
		Delete(&types.MaintenanceRecordAnomaly{}).Error; err != nil {
		return err
	}
	return t.WithContext(ctx).Where("id = ?", id).Delete(&types.MaintenanceRecord{}).Error
}
