package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	"github.com/gridsight/gridsight-backend/internal/data/repos/transformers"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type InspectionUpdate struct {
	Branch          *string                 `json:"branch"`
	Status          *types.InspectionStatus `json:"status"`
	InspectedBy     *string                 `json:"inspected_by"`
	Notes           *string                 `json:"notes"`
	MaintenanceDate *time.Time              `json:"maintenance_date"`
	MaintenanceTime *string                 `json:"maintenance_time"`
}

type InspectionService interface {
	Create(ctx context.Context, insp *types.Inspection, actor string) (*types.Inspection, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Inspection, error)
	GetByTransformer(ctx context.Context, transformerID uuid.UUID) ([]*types.Inspection, error)
	List(ctx context.Context, status *types.InspectionStatus, limit, offset int) ([]*types.Inspection, int64, error)
	Update(ctx context.Context, id uuid.UUID, upd InspectionUpdate, actor string) (*types.Inspection, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error

	// CheckAccess reports whether the inspection accepts annotation writes.
	CheckAccess(ctx context.Context, id uuid.UUID) (bool, string, error)
}

type inspectionService struct {
	db              *gorm.DB
	log             *logger.Logger
	inspectionRepo  inspections.InspectionRepo
	transformerRepo transformers.TransformerRepo
	annotationRepo  annotations.AnnotationRepo
	sequenceRepo    annotations.BoxSequenceRepo
	historyRepo     annotations.HistoryRepo
}

func NewInspectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	inspectionRepo inspections.InspectionRepo,
	transformerRepo transformers.TransformerRepo,
	annotationRepo annotations.AnnotationRepo,
	sequenceRepo annotations.BoxSequenceRepo,
	historyRepo annotations.HistoryRepo,
) InspectionService {
	return &inspectionService{
		db:              db,
		log:             baseLog.With("service", "InspectionService"),
		inspectionRepo:  inspectionRepo,
		transformerRepo: transformerRepo,
		annotationRepo:  annotationRepo,
		sequenceRepo:    sequenceRepo,
		historyRepo:     historyRepo,
	}
}

func (s *inspectionService) Create(ctx context.Context, insp *types.Inspection, actor string) (*types.Inspection, error) {
	if insp == nil || insp.InspectionNo == "" {
		return nil, apperr.Validation("inspection number is required")
	}
	if insp.Branch == "" {
		return nil, apperr.Validation("branch is required")
	}
	tr, err := s.transformerRepo.GetByID(ctx, nil, insp.TransformerID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, apperr.NotFound("transformer")
	}
	if existing, err := s.inspectionRepo.GetByNumber(ctx, nil, insp.InspectionNo); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Validation("inspection number %s already exists", insp.InspectionNo)
	}

	created, err := s.inspectionRepo.Create(ctx, nil, insp)
	if err != nil {
		return nil, err
	}
	s.appendAudit(ctx, created, nil, types.HistoryInspectionCreated,
		fmt.Sprintf("Inspection %s created for transformer %s", created.InspectionNo, tr.Code), actor, nil, nil)
	return created, nil
}

func (s *inspectionService) Get(ctx context.Context, id uuid.UUID) (*types.Inspection, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}
	return insp, nil
}

func (s *inspectionService) GetByTransformer(ctx context.Context, transformerID uuid.UUID) ([]*types.Inspection, error) {
	return s.inspectionRepo.GetByTransformer(ctx, nil, transformerID)
}

func (s *inspectionService) List(ctx context.Context, status *types.InspectionStatus, limit, offset int) ([]*types.Inspection, int64, error) {
	return s.inspectionRepo.List(ctx, nil, status, limit, offset)
}

func (s *inspectionService) Update(ctx context.Context, id uuid.UUID, upd InspectionUpdate, actor string) (*types.Inspection, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	var audit []*types.HistoryEntry

	if upd.Branch != nil && *upd.Branch != prev.Branch {
		updates["branch"] = *upd.Branch
	}
	if upd.Notes != nil && *upd.Notes != prev.Notes {
		updates["notes"] = *upd.Notes
	}
	if upd.MaintenanceDate != nil {
		updates["maintenance_date"] = *upd.MaintenanceDate
	}
	if upd.MaintenanceTime != nil {
		updates["maintenance_time"] = *upd.MaintenanceTime
	}
	if upd.InspectedBy != nil && *upd.InspectedBy != prev.InspectedBy {
		updates["inspected_by"] = *upd.InspectedBy
		audit = append(audit, s.auditEntry(prev, types.HistoryInspectorChanged,
			fmt.Sprintf("Inspector changed from %s to %s", prev.InspectedBy, *upd.InspectedBy), actor,
			jsonSnapshot(map[string]string{"inspected_by": prev.InspectedBy}),
			jsonSnapshot(map[string]string{"inspected_by": *upd.InspectedBy})))
	}
	if upd.Status != nil && *upd.Status != prev.Status {
		if !upd.Status.Valid() {
			return nil, apperr.Validation("unknown inspection status %q", *upd.Status)
		}
		updates["status"] = *upd.Status
		action := types.HistoryStatusChanged
		desc := fmt.Sprintf("Status changed from %s to %s", prev.Status, *upd.Status)
		if *upd.Status == types.InspectionCompleted {
			action = types.HistoryInspectionCompleted
			desc = fmt.Sprintf("Inspection %s completed", prev.InspectionNo)
		}
		audit = append(audit, s.auditEntry(prev, action, desc, actor,
			jsonSnapshot(map[string]string{"status": string(prev.Status)}),
			jsonSnapshot(map[string]string{"status": string(*upd.Status)})))
	}

	if len(updates) == 0 {
		return prev, nil
	}
	updated, err := s.inspectionRepo.Update(ctx, nil, id, updates)
	if err != nil {
		return nil, err
	}
	for _, entry := range audit {
		if err := s.historyRepo.Append(ctx, nil, entry); err != nil {
			s.log.Error("Audit write failed", "inspection_id", id, "action", entry.ActionType, "error", err)
		}
	}
	return updated, nil
}

// Delete removes the inspection and everything hanging off it: annotation
// versions, history, and the box counter row.
func (s *inspectionService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	insp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.annotationRepo.PurgeByInspection(ctx, tx, id); err != nil {
			return err
		}
		if err := s.sequenceRepo.DeleteByInspection(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Where("inspection_id = ?", id).Delete(&types.HistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("inspection_id = ?", id).Delete(&types.InspectionComment{}).Error; err != nil {
			return err
		}
		return s.inspectionRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("Inspection deleted", "inspection_id", id, "inspection_no", insp.InspectionNo, "actor", actor)
	return nil
}

func (s *inspectionService) CheckAccess(ctx context.Context, id uuid.UUID) (bool, string, error) {
	insp, err := s.Get(ctx, id)
	if err != nil {
		return false, "", err
	}
	if insp.Status == types.InspectionCompleted {
		return false, "inspection is completed and read-only", nil
	}
	return true, "", nil
}

func (s *inspectionService) appendAudit(ctx context.Context, insp *types.Inspection, boxNumber *int, action, description, actor string, prevData, newData datatypes.JSON) {
	entry := s.auditEntry(insp, action, description, actor, prevData, newData)
	entry.BoxNumber = boxNumber
	if err := s.historyRepo.Append(ctx, nil, entry); err != nil {
		s.log.Error("Audit write failed", "inspection_id", insp.ID, "action", action, "error", err)
	}
}

func (s *inspectionService) auditEntry(insp *types.Inspection, action, description, actor string, prevData, newData datatypes.JSON) *types.HistoryEntry {
	return &types.HistoryEntry{
		InspectionID: insp.ID,
		ActionType:   action,
		Description:  description,
		UserName:     actor,
		PreviousData: prevData,
		NewData:      newData,

		InspectionNumber: insp.InspectionNo,
		InspectionStatus: string(insp.Status),
		CurrentInspector: insp.InspectedBy,
	}
}

func jsonSnapshot(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
