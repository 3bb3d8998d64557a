package inspections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comment *types.InspectionComment) (*types.InspectionComment, error)
	GetByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.InspectionComment, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, text string) (*types.InspectionComment, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, comment *types.InspectionComment) (*types.InspectionComment, error) {
	t := r.resolve(tx)
	if comment == nil || comment.CommentText == "" {
		return nil, apperr.Validation("comment text is required")
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepo) GetByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.InspectionComment, error) {
	t := r.resolve(tx)
	var out []*types.InspectionComment
	if err := t.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *commentRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, text string) (*types.InspectionComment, error) {
	t := r.resolve(tx)
	if text == "" {
		return nil, apperr.Validation("comment text is required")
	}
	res := t.WithContext(ctx).Model(&types.InspectionComment{}).
		Where("id = ?", id).
		Update("comment_text", text)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("comment")
	}
	var row types.InspectionComment
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *commentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := r.resolve(tx)
	res := t.WithContext(ctx).Where("id = ?", id).Delete(&types.InspectionComment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("comment")
	}
	return nil
}
