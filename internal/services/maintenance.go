package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	"github.com/gridsight/gridsight-backend/internal/data/repos/maintenance"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type MaintenanceService interface {
	// CreateFromInspection opens a draft record snapshotting the
	// inspection's current active annotations as anomalies.
	CreateFromInspection(ctx context.Context, inspectionID uuid.UUID, transformerStatus types.TransformerStatus, notes, actor string) (*types.MaintenanceRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*types.MaintenanceRecord, error)
	GetByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*types.MaintenanceRecord, error)
	GetByTransformer(ctx context.Context, transformerID uuid.UUID) ([]*types.MaintenanceRecord, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.MaintenanceRecord, error)
	Finalize(ctx context.Context, id uuid.UUID) (*types.MaintenanceRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type maintenanceService struct {
	db             *gorm.DB
	log            *logger.Logger
	recordRepo     maintenance.RecordRepo
	annotationRepo annotations.AnnotationRepo
	inspectionRepo inspections.InspectionRepo
}

func NewMaintenanceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	recordRepo maintenance.RecordRepo,
	annotationRepo annotations.AnnotationRepo,
	inspectionRepo inspections.InspectionRepo,
) MaintenanceService {
	return &maintenanceService{
		db:             db,
		log:            baseLog.With("service", "MaintenanceService"),
		recordRepo:     recordRepo,
		annotationRepo: annotationRepo,
		inspectionRepo: inspectionRepo,
	}
}

func (s *maintenanceService) CreateFromInspection(ctx context.Context, inspectionID uuid.UUID, transformerStatus types.TransformerStatus, notes, actor string) (*types.MaintenanceRecord, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}

	var rec *types.MaintenanceRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := s.annotationRepo.GetActiveByInspection(ctx, tx, inspectionID)
		if err != nil {
			return err
		}
		anomalies := make([]types.MaintenanceRecordAnomaly, 0, len(active))
		for _, a := range active {
			anomaly := types.MaintenanceRecordAnomaly{
				BoxNumber:  a.BoxNumber,
				ClassName:  "Unclassified",
				Confidence: a.Confidence,
				BboxX1:     a.BboxX1,
				BboxY1:     a.BboxY1,
				BboxX2:     a.BboxX2,
				BboxY2:     a.BboxY2,
				Source:     string(a.Source),
			}
			if a.ClassID != nil {
				anomaly.ClassID = *a.ClassID
			}
			if a.ClassName != nil {
				anomaly.ClassName = *a.ClassName
			}
			anomalies = append(anomalies, anomaly)
		}
		rec, err = s.recordRepo.Create(ctx, tx, &types.MaintenanceRecord{
			RecordNumber:      fmt.Sprintf("MR-%s-%s", time.Now().UTC().Format("20060102"), uuid.NewString()[:8]),
			TransformerID:     insp.TransformerID,
			InspectionID:      inspectionID,
			TransformerStatus: transformerStatus,
			Notes:             notes,
			CreatedBy:         actor,
			Anomalies:         anomalies,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Maintenance record created",
		"record_number", rec.RecordNumber, "inspection_id", inspectionID, "anomalies", len(rec.Anomalies))
	return rec, nil
}

func (s *maintenanceService) Get(ctx context.Context, id uuid.UUID) (*types.MaintenanceRecord, error) {
	rec, err := s.recordRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound("maintenance record")
	}
	return rec, nil
}

func (s *maintenanceService) GetByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*types.MaintenanceRecord, error) {
	return s.recordRepo.GetByInspection(ctx, nil, inspectionID)
}

func (s *maintenanceService) GetByTransformer(ctx context.Context, transformerID uuid.UUID) ([]*types.MaintenanceRecord, error) {
	return s.recordRepo.GetByTransformer(ctx, nil, transformerID)
}

func (s *maintenanceService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.MaintenanceRecord, error) {
	delete(updates, "id")
	delete(updates, "record_number")
	delete(updates, "status")
	return s.recordRepo.Update(ctx, nil, id, updates)
}

func (s *maintenanceService) Finalize(ctx context.Context, id uuid.UUID) (*types.MaintenanceRecord, error) {
	return s.recordRepo.Finalize(ctx, nil, id)
}

func (s *maintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.recordRepo.Delete(ctx, nil, id)
}
