package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

// TimelineEntry is a history row enriched with its display category.
type TimelineEntry struct {
	*types.HistoryEntry
	Category types.HistoryCategory `json:"category"`
}

type HistoryService interface {
	Full(ctx context.Context, inspectionID uuid.UUID) ([]TimelineEntry, error)
	Recent(ctx context.Context, inspectionID uuid.UUID, limit int) ([]TimelineEntry, error)
	ByBox(ctx context.Context, inspectionID uuid.UUID, boxNumber int) ([]TimelineEntry, error)
	Statistics(ctx context.Context, inspectionID uuid.UUID) (*types.HistoryStatistics, error)
}

type historyService struct {
	log            *logger.Logger
	historyRepo    annotations.HistoryRepo
	inspectionRepo inspections.InspectionRepo
}

func NewHistoryService(
	baseLog *logger.Logger,
	historyRepo annotations.HistoryRepo,
	inspectionRepo inspections.InspectionRepo,
) HistoryService {
	return &historyService{
		log:            baseLog.With("service", "HistoryService"),
		historyRepo:    historyRepo,
		inspectionRepo: inspectionRepo,
	}
}

func (s *historyService) Full(ctx context.Context, inspectionID uuid.UUID) ([]TimelineEntry, error) {
	if err := s.requireInspection(ctx, inspectionID); err != nil {
		return nil, err
	}
	rows, err := s.historyRepo.FullByInspection(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}
	return categorize(rows), nil
}

func (s *historyService) Recent(ctx context.Context, inspectionID uuid.UUID, limit int) ([]TimelineEntry, error) {
	if err := s.requireInspection(ctx, inspectionID); err != nil {
		return nil, err
	}
	rows, err := s.historyRepo.RecentByInspection(ctx, nil, inspectionID, limit)
	if err != nil {
		return nil, err
	}
	return categorize(rows), nil
}

func (s *historyService) ByBox(ctx context.Context, inspectionID uuid.UUID, boxNumber int) ([]TimelineEntry, error) {
	if err := s.requireInspection(ctx, inspectionID); err != nil {
		return nil, err
	}
	rows, err := s.historyRepo.ByBox(ctx, nil, inspectionID, boxNumber)
	if err != nil {
		return nil, err
	}
	return categorize(rows), nil
}

func (s *historyService) Statistics(ctx context.Context, inspectionID uuid.UUID) (*types.HistoryStatistics, error) {
	if err := s.requireInspection(ctx, inspectionID); err != nil {
		return nil, err
	}
	return s.historyRepo.Statistics(ctx, nil, inspectionID)
}

func (s *historyService) requireInspection(ctx context.Context, inspectionID uuid.UUID) error {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, inspectionID)
	if err != nil {
		return err
	}
	if insp == nil {
		return apperr.NotFound("inspection")
	}
	return nil
}

func categorize(rows []*types.HistoryEntry) []TimelineEntry {
	out := make([]TimelineEntry, len(rows))
	for i, row := range rows {
		out[i] = TimelineEntry{HistoryEntry: row, Category: types.CategorizeAction(row.ActionType)}
	}
	return out
}
