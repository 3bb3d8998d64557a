package inspections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type InspectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, insp *types.Inspection) (*types.Inspection, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Inspection, error)
	GetByNumber(ctx context.Context, tx *gorm.DB, inspectionNo string) (*types.Inspection, error)
	GetByTransformer(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID) ([]*types.Inspection, error)
	List(ctx context.Context, tx *gorm.DB, status *types.InspectionStatus, limit, offset int) ([]*types.Inspection, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.Inspection, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type inspectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInspectionRepo(db *gorm.DB, baseLog *logger.Logger) InspectionRepo {
	return &inspectionRepo{db: db, log: baseLog.With("repo", "InspectionRepo")}
}

func (r *inspectionRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *inspectionRepo) Create(ctx context.Context, tx *gorm.DB, insp *types.Inspection) (*types.Inspection, error) {
	t := r.resolve(tx)
	if insp == nil {
		return nil, apperr.Validation("inspection is nil")
	}
	if insp.ID == uuid.Nil {
		insp.ID = uuid.New()
	}
	if insp.Status == "" {
		insp.Status = types.InspectionInProgress
	}
	if err := t.WithContext(ctx).Create(insp).Error; err != nil {
		return nil, err
	}
	return insp, nil
}

func (r *inspectionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Inspection, error) {
	t := r.resolve(tx)
	var row types.Inspection
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *inspectionRepo) GetByNumber(ctx context.Context, tx *gorm.DB, inspectionNo string) (*types.Inspection, error) {
	t := r.resolve(tx)
	var row types.Inspection
	if err := t.WithContext(ctx).Where("inspection_no = ?", inspectionNo).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *inspectionRepo) GetByTransformer(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID) ([]*types.Inspection, error) {
	t := r.resolve(tx)
	var out []*types.Inspection
	if err := t.WithContext(ctx).
		Where("transformer_id = ?", transformerID).
		Order("inspection_date DESC, created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *inspectionRepo) List(ctx context.Context, tx *gorm.DB, status *types.InspectionStatus, limit, offset int) ([]*types.Inspection, int64, error) {
	t := r.resolve(tx)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := t.WithContext(ctx).Model(&types.Inspection{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Inspection
	if err := q.
		Order("inspection_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *inspectionRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.Inspection, error) {
	t := r.resolve(tx)
	if len(updates) == 0 {
		return r.GetByID(ctx, t, id)
	}
	res := t.WithContext(ctx).Model(&types.Inspection{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("inspection")
	}
	return r.GetByID(ctx, t, id)
}

func (r *inspectionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := r.resolve(tx)
	res := t.WithContext(ctx).Where("id = ?", id).Delete(&types.Inspection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("inspection")
	}
	return nil
}
