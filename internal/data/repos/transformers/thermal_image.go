package transformers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type ThermalImageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, img *types.ThermalImage) (*types.ThermalImage, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ThermalImage, error)
	GetByTransformer(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID, imageType *types.ImageType) ([]*types.ThermalImage, error)

	// LatestBaseline returns the most recent baseline image for the
	// transformer, or nil when none was ever uploaded.
	LatestBaseline(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID) (*types.ThermalImage, error)

	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type thermalImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThermalImageRepo(db *gorm.DB, baseLog *logger.Logger) ThermalImageRepo {
	return &thermalImageRepo{db: db, log: baseLog.With("repo", "ThermalImageRepo")}
}

func (r *thermalImageRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *thermalImageRepo) Create(ctx context.Context, tx *gorm.DB, img *types.ThermalImage) (*types.ThermalImage, error) {
	t := r.resolve(tx)
	if img == nil {
		return nil, apperr.Validation("image is nil")
	}
	if img.Type == types.ImageBaseline && img.EnvCondition == nil {
		return nil, apperr.Validation("baseline images require an environmental condition")
	}
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

func (r *thermalImageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ThermalImage, error) {
	t := r.resolve(tx)
	var row types.ThermalImage
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *thermalImageRepo) GetByTransformer(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID, imageType *types.ImageType) ([]*types.ThermalImage, error) {
	t := r.resolve(tx)
	q := t.WithContext(ctx).Where("transformer_id = ?", transformerID)
	if imageType != nil {
		q = q.Where("type = ?", *imageType)
	}
	var out []*types.ThermalImage
	if err := q.Order("uploaded_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *thermalImageRepo) LatestBaseline(ctx context.Context, tx *gorm.DB, transformerID uuid.UUID) (*types.ThermalImage, error) {
	t := r.resolve(tx)
	var row types.ThermalImage
	if err := t.WithContext(ctx).
		Where("transformer_id = ? AND type = ?", transformerID, types.ImageBaseline).
		Order("uploaded_at DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *thermalImageRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := r.resolve(tx)
	res := t.WithContext(ctx).Where("id = ?", id).Delete(&types.ThermalImage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("thermal image")
	}
	return nil
}
