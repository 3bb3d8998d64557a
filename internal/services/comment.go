package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type CommentService interface {
	Add(ctx context.Context, inspectionID uuid.UUID, text, author string) (*types.InspectionComment, error)
	GetByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*types.InspectionComment, error)
	Update(ctx context.Context, id uuid.UUID, text string) (*types.InspectionComment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentService struct {
	log            *logger.Logger
	commentRepo    inspections.CommentRepo
	inspectionRepo inspections.InspectionRepo
}

func NewCommentService(
	baseLog *logger.Logger,
	commentRepo inspections.CommentRepo,
	inspectionRepo inspections.InspectionRepo,
) CommentService {
	return &commentService{
		log:            baseLog.With("service", "CommentService"),
		commentRepo:    commentRepo,
		inspectionRepo: inspectionRepo,
	}
}

func (s *commentService) Add(ctx context.Context, inspectionID uuid.UUID, text, author string) (*types.InspectionComment, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}
	return s.commentRepo.Create(ctx, nil, &types.InspectionComment{
		InspectionID: inspectionID,
		CommentText:  text,
		Author:       author,
	})
}

func (s *commentService) GetByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*types.InspectionComment, error) {
	return s.commentRepo.GetByInspection(ctx, nil, inspectionID)
}

func (s *commentService) Update(ctx context.Context, id uuid.UUID, text string) (*types.InspectionComment, error) {
	return s.commentRepo.Update(ctx, nil, id, text)
}

func (s *commentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.commentRepo.Delete(ctx, nil, id)
}
