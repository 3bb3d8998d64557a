package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridsight/gridsight-backend/internal/data/repos/transformers"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type TransformerService interface {
	Create(ctx context.Context, tr *types.Transformer) (*types.Transformer, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Transformer, error)
	GetByCode(ctx context.Context, code string) (*types.Transformer, error)
	List(ctx context.Context, region string, limit, offset int) ([]*types.Transformer, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.Transformer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type transformerService struct {
	log             *logger.Logger
	transformerRepo transformers.TransformerRepo
}

func NewTransformerService(baseLog *logger.Logger, transformerRepo transformers.TransformerRepo) TransformerService {
	return &transformerService{
		log:             baseLog.With("service", "TransformerService"),
		transformerRepo: transformerRepo,
	}
}

func (s *transformerService) Create(ctx context.Context, tr *types.Transformer) (*types.Transformer, error) {
	if tr == nil || tr.Code == "" {
		return nil, apperr.Validation("transformer code is required")
	}
	if tr.Location == "" {
		return nil, apperr.Validation("transformer location is required")
	}
	if existing, err := s.transformerRepo.GetByCode(ctx, nil, tr.Code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Validation("transformer code %s already exists", tr.Code)
	}
	return s.transformerRepo.Create(ctx, nil, tr)
}

func (s *transformerService) Get(ctx context.Context, id uuid.UUID) (*types.Transformer, error) {
	tr, err := s.transformerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, apperr.NotFound("transformer")
	}
	return tr, nil
}

func (s *transformerService) GetByCode(ctx context.Context, code string) (*types.Transformer, error) {
	tr, err := s.transformerRepo.GetByCode(ctx, nil, code)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, apperr.NotFound("transformer")
	}
	return tr, nil
}

func (s *transformerService) List(ctx context.Context, region string, limit, offset int) ([]*types.Transformer, int64, error) {
	return s.transformerRepo.List(ctx, nil, region, limit, offset)
}

func (s *transformerService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.Transformer, error) {
	delete(updates, "id")
	delete(updates, "code")
	return s.transformerRepo.Update(ctx, nil, id, updates)
}

func (s *transformerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.transformerRepo.Delete(ctx, nil, id)
}
