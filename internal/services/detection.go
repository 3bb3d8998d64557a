package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridsight/gridsight-backend/internal/clients/ml"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
	"github.com/gridsight/gridsight-backend/internal/platform/localmedia"
)

// DetectionResult is what a detection run produced for an inspection.
type DetectionResult struct {
	ModelVersion string              `json:"model_version"`
	Annotations  []*types.Annotation `json:"annotations"`
}

// DetectionService runs the inference model against an inspection's thermal
// image and stores the returned boxes as version-1 annotation rows.
type DetectionService interface {
	Run(ctx context.Context, inspectionID uuid.UUID, actor string) (*DetectionResult, error)
	Health(ctx context.Context) error
}

type detectionService struct {
	log               *logger.Logger
	mlClient          ml.Client
	store             *localmedia.Store
	inspectionRepo    inspections.InspectionRepo
	annotationService AnnotationService
}

func NewDetectionService(
	baseLog *logger.Logger,
	mlClient ml.Client,
	store *localmedia.Store,
	inspectionRepo inspections.InspectionRepo,
	annotationService AnnotationService,
) DetectionService {
	return &detectionService{
		log:               baseLog.With("service", "DetectionService"),
		mlClient:          mlClient,
		store:             store,
		inspectionRepo:    inspectionRepo,
		annotationService: annotationService,
	}
}

func (s *detectionService) Run(ctx context.Context, inspectionID uuid.UUID, actor string) (*DetectionResult, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}
	if insp.ImagePath == nil || *insp.ImagePath == "" {
		return nil, apperr.Validation("inspection has no thermal image to analyze")
	}

	resp, err := s.mlClient.Detect(ctx, s.store.URL(*insp.ImagePath))
	if err != nil {
		s.log.Error("Detection run failed", "inspection_id", inspectionID, "error", err)
		return nil, err
	}

	detections := make([]Detection, 0, len(resp.Detections))
	for _, d := range resp.Detections {
		detections = append(detections, Detection{
			BboxX1:     d.BboxX1,
			BboxY1:     d.BboxY1,
			BboxX2:     d.BboxX2,
			BboxY2:     d.BboxY2,
			ClassID:    d.ClassID,
			ClassName:  d.ClassName,
			Confidence: d.Confidence,
		})
	}

	rows, err := s.annotationService.RecordDetectionBatch(ctx, inspectionID, detections, resp.ModelVersion, actor)
	if err != nil {
		return nil, err
	}
	s.log.Info("Detection run recorded", "inspection_id", inspectionID, "boxes", len(rows), "model_version", resp.ModelVersion)
	return &DetectionResult{ModelVersion: resp.ModelVersion, Annotations: rows}, nil
}

func (s *detectionService) Health(ctx context.Context) error {
	return s.mlClient.Health(ctx)
}
