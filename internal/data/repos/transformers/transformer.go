package transformers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type TransformerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tr *types.Transformer) (*types.Transformer, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Transformer, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Transformer, error)
	List(ctx context.Context, tx *gorm.DB, region string, limit, offset int) ([]*types.Transformer, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.Transformer, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type transformerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransformerRepo(db *gorm.DB, baseLog *logger.Logger) TransformerRepo {
	return &transformerRepo{db: db, log: baseLog.With("repo", "TransformerRepo")}
}

func (r *transformerRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *transformerRepo) Create(ctx context.Context, tx *gorm.DB, tr *types.Transformer) (*types.Transformer, error) {
	t := r.resolve(tx)
	if tr == nil || tr.Code == "" {
		return nil, apperr.Validation("transformer code is required")
	}
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(tr).Error; err != nil {
		return nil, err
	}
	return tr, nil
}

func (r *transformerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Transformer, error) {
	t := r.resolve(tx)
	var row types.Transformer
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *transformerRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Transformer, error) {
	t := r.resolve(tx)
	var row types.Transformer
	if err := t.WithContext(ctx).Where("code = ?", code).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *transformerRepo) List(ctx context.Context, tx *gorm.DB, region string, limit, offset int) ([]*types.Transformer, int64, error) {
	t := r.resolve(tx)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := t.WithContext(ctx).Model(&types.Transformer{})
	if region != "" {
		q = q.Where("region = ?", region)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Transformer
	if err := q.
		Order("code ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *transformerRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.Transformer, error) {
	t := r.resolve(tx)
	if len(updates) == 0 {
		return r.GetByID(ctx, t, id)
	}
	res := t.WithContext(ctx).Model(&types.Transformer{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("transformer")
	}
	return r.GetByID(ctx, t, id)
}

func (r *transformerRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := r.resolve(tx)
	res := t.WithContext(ctx).Where("id = ?", id).Delete(&types.Transformer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("transformer")
	}
	return nil
}
