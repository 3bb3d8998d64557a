package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

// SaveRequest is one box submitted by an inspector. A nil AnnotationID means
// a brand-new box; otherwise it is an edit of the row at AnnotationID.
type SaveRequest struct {
	AnnotationID *uuid.UUID `json:"annotation_id"`

	BboxX1 int `json:"bbox_x1"`
	BboxY1 int `json:"bbox_y1"`
	BboxX2 int `json:"bbox_x2"`
	BboxY2 int `json:"bbox_y2"`

	ClassID    *int     `json:"class_id"`
	ClassName  *string  `json:"class_name"`
	Confidence *float64 `json:"confidence"`
	Comments   *string  `json:"comments"`

	SeverityScore *float64 `json:"severity_score"`
	Flagged       bool     `json:"flagged"`
}

// Detection is one model output row fed into RecordDetectionBatch. Order is
// preserved when box numbers are assigned.
type Detection struct {
	BboxX1 int `json:"bbox_x1"`
	BboxY1 int `json:"bbox_y1"`
	BboxX2 int `json:"bbox_x2"`
	BboxY2 int `json:"bbox_y2"`

	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

type AnnotationService interface {
	GetActive(ctx context.Context, inspectionID uuid.UUID) ([]*types.Annotation, error)
	GetAll(ctx context.Context, inspectionID uuid.UUID) ([]*types.Annotation, error)
	GetLineage(ctx context.Context, annotationID uuid.UUID) ([]*types.Annotation, error)

	Save(ctx context.Context, inspectionID uuid.UUID, req SaveRequest, actor string) (*types.Annotation, error)
	SaveBatch(ctx context.Context, inspectionID uuid.UUID, reqs []SaveRequest, actor string) ([]*types.Annotation, error)

	Approve(ctx context.Context, annotationID uuid.UUID, actor string, comment *string) (*types.Annotation, error)
	Reject(ctx context.Context, annotationID uuid.UUID, actor string, comment *string) (*types.Annotation, error)
	Delete(ctx context.Context, annotationID uuid.UUID, actor string, comment *string) (*types.Annotation, error)

	RecordDetectionBatch(ctx context.Context, inspectionID uuid.UUID, detections []Detection, modelVersion string, actor string) ([]*types.Annotation, error)

	// NextBoxNumber reports the number the next created box would receive,
	// without consuming it.
	NextBoxNumber(ctx context.Context, inspectionID uuid.UUID) (int, error)
	RepairSequence(ctx context.Context, inspectionID uuid.UUID) (int, error)
}

type annotationService struct {
	db             *gorm.DB
	log            *logger.Logger
	annotationRepo annotations.AnnotationRepo
	sequenceRepo   annotations.BoxSequenceRepo
	historyRepo    annotations.HistoryRepo
	inspectionRepo inspections.InspectionRepo
}

func NewAnnotationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	annotationRepo annotations.AnnotationRepo,
	sequenceRepo annotations.BoxSequenceRepo,
	historyRepo annotations.HistoryRepo,
	inspectionRepo inspections.InspectionRepo,
) AnnotationService {
	return &annotationService{
		db:             db,
		log:            baseLog.With("service", "AnnotationService"),
		annotationRepo: annotationRepo,
		sequenceRepo:   sequenceRepo,
		historyRepo:    historyRepo,
		inspectionRepo: inspectionRepo,
	}
}

func (s *annotationService) GetActive(ctx context.Context, inspectionID uuid.UUID) ([]*types.Annotation, error) {
	if _, err := s.requireInspection(ctx, inspectionID); err != nil {
		return nil, err
	}
	return s.annotationRepo.GetActiveByInspection(ctx, nil, inspectionID)
}

func (s *annotationService) GetAll(ctx context.Context, inspectionID uuid.UUID) ([]*types.Annotation, error) {
	if _, err := s.requireInspection(ctx, inspectionID); err != nil {
		return nil, err
	}
	return s.annotationRepo.GetAllByInspection(ctx, nil, inspectionID)
}

func (s *annotationService) GetLineage(ctx context.Context, annotationID uuid.UUID) ([]*types.Annotation, error) {
	return s.annotationRepo.GetLineage(ctx, nil, annotationID)
}

func (s *annotationService) Save(ctx context.Context, inspectionID uuid.UUID, req SaveRequest, actor string) (*types.Annotation, error) {
	out, err := s.SaveBatch(ctx, inspectionID, []SaveRequest{req}, actor)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// SaveBatch persists the submitted boxes atomically: either every box lands
// or none does. Audit entries are written after the commit so a history
// failure never rolls back the state change it describes.
func (s *annotationService) SaveBatch(ctx context.Context, inspectionID uuid.UUID, reqs []SaveRequest, actor string) ([]*types.Annotation, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("no annotations submitted")
	}
	insp, err := s.requireWritableInspection(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if err := validateBbox(reqs[i].BboxX1, reqs[i].BboxY1, reqs[i].BboxX2, reqs[i].BboxY2); err != nil {
			return nil, err
		}
	}

	var (
		saved []*types.Annotation
		audit []*types.HistoryEntry
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		saved = saved[:0]
		audit = audit[:0]

		var newBoxes []int
		newCount := 0
		for i := range reqs {
			if reqs[i].AnnotationID == nil {
				newCount++
			}
		}
		if newCount > 0 {
			newBoxes, err = s.sequenceRepo.Allocate(ctx, tx, inspectionID, newCount)
			if err != nil {
				return err
			}
		}

		nextBox := 0
		for i := range reqs {
			req := reqs[i]
			if req.AnnotationID == nil {
				boxNumber := newBoxes[nextBox]
				nextBox++
				row := &types.Annotation{
					InspectionID:  inspectionID,
					BoxNumber:     &boxNumber,
					BboxX1:        req.BboxX1,
					BboxY1:        req.BboxY1,
					BboxX2:        req.BboxX2,
					BboxY2:        req.BboxY2,
					ClassID:       req.ClassID,
					ClassName:     req.ClassName,
					Confidence:    req.Confidence,
					Comments:      req.Comments,
					SeverityScore: req.SeverityScore,
					Flagged:       req.Flagged,
					Source:        types.SourceHuman,
					CreatedBy:     actor,
				}
				area := row.Area()
				row.SizePx = &area
				created, err := s.annotationRepo.CreateRoots(ctx, tx, []*types.Annotation{row})
				if err != nil {
					return err
				}
				saved = append(saved, created[0])
				audit = append(audit, s.auditEntry(insp, created[0].BoxNumber, types.HistoryBoxCreated,
					fmt.Sprintf("Box %d created", boxNumber), actor, nil, created[0]))
				continue
			}

			prev, err := s.annotationRepo.GetByID(ctx, tx, *req.AnnotationID)
			if err != nil {
				return err
			}
			if prev == nil {
				return apperr.NotFound("annotation")
			}
			next, err := s.annotationRepo.SaveNewVersion(ctx, tx, *req.AnnotationID, annotations.Edits{
				BboxX1:        req.BboxX1,
				BboxY1:        req.BboxY1,
				BboxX2:        req.BboxX2,
				BboxY2:        req.BboxY2,
				ClassID:       req.ClassID,
				ClassName:     req.ClassName,
				Confidence:    req.Confidence,
				Comments:      req.Comments,
				SeverityScore: req.SeverityScore,
				Flagged:       req.Flagged,
			}, actor)
			if err != nil {
				return err
			}
			saved = append(saved, next)
			action, desc := classifyEdit(prev, next)
			audit = append(audit, s.auditEntry(insp, next.BoxNumber, action, desc, actor, prev, next))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, audit)
	return saved, nil
}

func (s *annotationService) Approve(ctx context.Context, annotationID uuid.UUID, actor string, comment *string) (*types.Annotation, error) {
	return s.terminal(ctx, annotationID, types.ActionApproved, types.HistoryBoxApproved, actor, comment)
}

func (s *annotationService) Reject(ctx context.Context, annotationID uuid.UUID, actor string, comment *string) (*types.Annotation, error) {
	return s.terminal(ctx, annotationID, types.ActionRejected, types.HistoryBoxRejected, actor, comment)
}

func (s *annotationService) Delete(ctx context.Context, annotationID uuid.UUID, actor string, comment *string) (*types.Annotation, error) {
	return s.terminal(ctx, annotationID, types.ActionDeleted, types.HistoryBoxDeleted, actor, comment)
}

func (s *annotationService) terminal(ctx context.Context, annotationID uuid.UUID, action types.AnnotationAction, historyAction string, actor string, comment *string) (*types.Annotation, error) {
	var (
		prev    *types.Annotation
		updated *types.Annotation
		insp    *types.Inspection
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		prev, err = s.annotationRepo.GetByID(ctx, tx, annotationID)
		if err != nil {
			return err
		}
		if prev == nil {
			return apperr.NotFound("annotation")
		}
		insp, err = s.requireWritableInspectionTx(ctx, tx, prev.InspectionID)
		if err != nil {
			return err
		}
		updated, err = s.annotationRepo.MarkTerminal(ctx, tx, annotationID, action, actor, comment)
		return err
	})
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Box %s %s", boxLabel(updated.BoxNumber), action)
	s.writeAudit(ctx, []*types.HistoryEntry{
		s.auditEntry(insp, updated.BoxNumber, historyAction, desc, actor, prev, updated),
	})
	return updated, nil
}

// RecordDetectionBatch stores the model's detections as version-1 rows with
// consecutive box numbers in detection order, and logs one AI_DETECTION_RUN
// entry covering the whole batch.
func (s *annotationService) RecordDetectionBatch(ctx context.Context, inspectionID uuid.UUID, detections []Detection, modelVersion string, actor string) ([]*types.Annotation, error) {
	insp, err := s.requireWritableInspection(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	for i := range detections {
		if err := validateBbox(detections[i].BboxX1, detections[i].BboxY1, detections[i].BboxX2, detections[i].BboxY2); err != nil {
			return nil, err
		}
	}

	var created []*types.Annotation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(detections) == 0 {
			created = []*types.Annotation{}
			return nil
		}
		boxes, err := s.sequenceRepo.Allocate(ctx, tx, inspectionID, len(detections))
		if err != nil {
			return err
		}
		rows := make([]*types.Annotation, len(detections))
		for i := range detections {
			d := detections[i]
			boxNumber := boxes[i]
			classID := d.ClassID
			className := d.ClassName
			confidence := d.Confidence
			row := &types.Annotation{
				InspectionID: inspectionID,
				BoxNumber:    &boxNumber,
				BboxX1:       d.BboxX1,
				BboxY1:       d.BboxY1,
				BboxX2:       d.BboxX2,
				BboxY2:       d.BboxY2,
				ClassID:      &classID,
				ClassName:    &className,
				Confidence:   &confidence,
				Source:       types.SourceAI,
				CreatedBy:    actor,
			}
			area := row.Area()
			row.SizePx = &area
			rows[i] = row
		}
		created, err = s.annotationRepo.CreateRoots(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"detections":    len(created),
		"model_version": modelVersion,
	})
	entry := s.auditEntry(insp, nil, types.HistoryAIDetectionRun,
		fmt.Sprintf("AI detection stored %d boxes", len(created)), actor, nil, nil)
	entry.NewData = datatypes.JSON(payload)
	s.writeAudit(ctx, []*types.HistoryEntry{entry})
	return created, nil
}

func (s *annotationService) NextBoxNumber(ctx context.Context, inspectionID uuid.UUID) (int, error) {
	if _, err := s.requireInspection(ctx, inspectionID); err != nil {
		return 0, err
	}
	return s.sequenceRepo.Peek(ctx, nil, inspectionID)
}

func (s *annotationService) RepairSequence(ctx context.Context, inspectionID uuid.UUID) (int, error) {
	if _, err := s.requireInspection(ctx, inspectionID); err != nil {
		return 0, err
	}
	return s.sequenceRepo.Repair(ctx, nil, inspectionID)
}

func (s *annotationService) requireInspection(ctx context.Context, inspectionID uuid.UUID) (*types.Inspection, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}
	return insp, nil
}

func (s *annotationService) requireWritableInspection(ctx context.Context, inspectionID uuid.UUID) (*types.Inspection, error) {
	return s.requireWritableInspectionTx(ctx, nil, inspectionID)
}

func (s *annotationService) requireWritableInspectionTx(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (*types.Inspection, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, tx, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}
	if insp.Status == types.InspectionCompleted {
		return nil, apperr.Validation("inspection %s is completed and read-only", insp.InspectionNo)
	}
	return insp, nil
}

func (s *annotationService) auditEntry(insp *types.Inspection, boxNumber *int, action, description, actor string, prev, next *types.Annotation) *types.HistoryEntry {
	entry := &types.HistoryEntry{
		InspectionID: insp.ID,
		BoxNumber:    boxNumber,
		ActionType:   action,
		Description:  description,
		UserName:     actor,

		InspectionNumber: insp.InspectionNo,
		InspectionStatus: string(insp.Status),
		CurrentInspector: insp.InspectedBy,
	}
	if prev != nil {
		if data, err := json.Marshal(prev); err == nil {
			entry.PreviousData = datatypes.JSON(data)
		}
	}
	if next != nil {
		if data, err := json.Marshal(next); err == nil {
			entry.NewData = datatypes.JSON(data)
		}
	}
	return entry
}

// writeAudit appends history entries after the surrounding state change has
// committed. Failures are logged and dropped: audit must never undo the
// mutation it records.
func (s *annotationService) writeAudit(ctx context.Context, entries []*types.HistoryEntry) {
	for _, entry := range entries {
		if err := s.historyRepo.Append(ctx, nil, entry); err != nil {
			s.log.Error("Audit write failed",
				"inspection_id", entry.InspectionID,
				"action", entry.ActionType,
				"error", fmt.Errorf("%w: %v", apperr.ErrAuditWriteFailed, err))
		}
	}
}

func validateBbox(x1, y1, x2, y2 int) error {
	if x1 < 0 || y1 < 0 {
		return apperr.Validation("bbox origin (%d,%d) out of range", x1, y1)
	}
	if x2 <= x1 || y2 <= y1 {
		return apperr.Validation("bbox (%d,%d)-(%d,%d) has non-positive extent", x1, y1, x2, y2)
	}
	return nil
}

// classifyEdit picks the most specific history action for a version change.
func classifyEdit(prev, next *types.Annotation) (string, string) {
	label := boxLabel(next.BoxNumber)
	classChanged := !intPtrEq(prev.ClassID, next.ClassID)
	confidenceChanged := !floatPtrEq(prev.Confidence, next.Confidence)
	moved := prev.BboxX1 != next.BboxX1 || prev.BboxY1 != next.BboxY1
	prevW, prevH := prev.BboxX2-prev.BboxX1, prev.BboxY2-prev.BboxY1
	nextW, nextH := next.BboxX2-next.BboxX1, next.BboxY2-next.BboxY1
	resized := prevW != nextW || prevH != nextH

	switch {
	case classChanged && !moved && !resized:
		return types.HistoryClassChanged, fmt.Sprintf("Box %s class changed", label)
	case confidenceChanged && !classChanged && !moved && !resized:
		return types.HistoryConfidenceUpdated, fmt.Sprintf("Box %s confidence updated", label)
	case moved && !resized && !classChanged:
		return types.HistoryBoxMoved, fmt.Sprintf("Box %s moved", label)
	case resized && !moved && !classChanged:
		return types.HistoryBoxResized, fmt.Sprintf("Box %s resized", label)
	default:
		return types.HistoryBoxEdited, fmt.Sprintf("Box %s edited", label)
	}
}

func boxLabel(n *int) string {
	if n == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *n)
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
