package services

import (
	"context"
	"errors"
	"testing"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	"github.com/gridsight/gridsight-backend/internal/data/repos/testutil"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

type serviceHarness struct {
	tx          *gorm.DB
	service     AnnotationService
	feedback    FeedbackService
	history     HistoryService
	historyRepo annotations.HistoryRepo
	inspection  *types.Inspection
}

func newServiceHarness(t *testing.T) (*serviceHarness, context.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	annotationRepo := annotations.NewAnnotationRepo(tx, log)
	sequenceRepo := annotations.NewBoxSequenceRepo(tx, log)
	historyRepo := annotations.NewHistoryRepo(tx, log)
	inspectionRepo := inspections.NewInspectionRepo(tx, log)

	tr := testutil.SeedTransformer(t, ctx, tx, "SV-"+t.Name()[len(t.Name())-6:])
	insp := testutil.SeedInspection(t, ctx, tx, tr.ID)

	return &serviceHarness{
		tx:          tx,
		service:     NewAnnotationService(tx, log, annotationRepo, sequenceRepo, historyRepo, inspectionRepo),
		feedback:    NewFeedbackService(log, annotationRepo, inspectionRepo),
		history:     NewHistoryService(log, historyRepo, inspectionRepo),
		historyRepo: historyRepo,
		inspection:  insp,
	}, ctx
}

func TestAnnotationServiceHumanLifecycle(t *testing.T) {
	h, ctx := newServiceHarness(t)
	className := "Faulty"

	created, err := h.service.Save(ctx, h.inspection.ID, SaveRequest{
		BboxX1: 10, BboxY1: 10, BboxX2: 50, BboxY2: 50,
		ClassName: &className,
	}, "inspector@example.com")
	if err != nil {
		t.Fatalf("Save new: %v", err)
	}
	if created.BoxNumber == nil || *created.BoxNumber != 1 {
		t.Fatalf("box number = %v, want 1", created.BoxNumber)
	}
	if created.Version != 1 || !created.IsActive || created.Source != types.SourceHuman {
		t.Fatalf("root row wrong: %+v", created)
	}

	edited, err := h.service.Save(ctx, h.inspection.ID, SaveRequest{
		AnnotationID: &created.ID,
		BboxX1:       12, BboxY1: 12, BboxX2: 52, BboxY2: 52,
		ClassName: &className,
	}, "inspector@example.com")
	if err != nil {
		t.Fatalf("Save edit: %v", err)
	}
	if edited.Version != 2 {
		t.Fatalf("edited version = %d, want 2", edited.Version)
	}
	if edited.BoxNumber == nil || *edited.BoxNumber != 1 {
		t.Fatalf("edited box number = %v, want 1 inherited", edited.BoxNumber)
	}

	// Editing through the replaced head loses the race.
	if _, err := h.service.Save(ctx, h.inspection.ID, SaveRequest{
		AnnotationID: &created.ID,
		BboxX1:       1, BboxY1: 1, BboxX2: 2, BboxY2: 2,
	}, "other"); !errors.Is(err, apperr.ErrStaleVersion) {
		t.Fatalf("stale edit: err = %v, want ErrStaleVersion", err)
	}

	rejected, err := h.service.Reject(ctx, edited.ID, "reviewer", nil)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.IsActive || rejected.ActionType != types.ActionRejected {
		t.Fatalf("rejected row: %+v", rejected)
	}

	active, err := h.service.GetActive(ctx, h.inspection.ID)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active after reject = %d rows, want 0", len(active))
	}

	// Audit trail: created, edited(moved), rejected.
	timeline, err := h.history.Full(ctx, h.inspection.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(timeline) != 3 {
		t.Fatalf("timeline = %d entries, want 3", len(timeline))
	}
	if timeline[0].ActionType != types.HistoryBoxRejected {
		t.Fatalf("newest entry = %s, want BOX_REJECTED", timeline[0].ActionType)
	}
	if timeline[2].ActionType != types.HistoryBoxCreated {
		t.Fatalf("oldest entry = %s, want BOX_CREATED", timeline[2].ActionType)
	}
	if timeline[0].Category != types.CategoryBoxDecision {
		t.Fatalf("rejected category = %s", timeline[0].Category)
	}
}

func TestAnnotationServiceDetectionBatch(t *testing.T) {
	h, ctx := newServiceHarness(t)

	created, err := h.service.RecordDetectionBatch(ctx, h.inspection.ID, []Detection{
		{BboxX1: 10, BboxY1: 10, BboxX2: 40, BboxY2: 40, ClassID: 1, ClassName: "Loose Joint (Faulty)", Confidence: 0.95},
		{BboxX1: 60, BboxY1: 10, BboxX2: 90, BboxY2: 40, ClassID: 2, ClassName: "Point Overload (Faulty)", Confidence: 0.81},
		{BboxX1: 10, BboxY1: 60, BboxX2: 40, BboxY2: 90, ClassID: 1, ClassName: "Loose Joint (Faulty)", Confidence: 0.66},
	}, "yolov8-2026.1", "system")
	if err != nil {
		t.Fatalf("RecordDetectionBatch: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("created = %d rows, want 3", len(created))
	}
	for i, row := range created {
		if row.BoxNumber == nil || *row.BoxNumber != i+1 {
			t.Fatalf("detection %d box number = %v, want %d", i, row.BoxNumber, i+1)
		}
		if row.Source != types.SourceAI || row.Version != 1 || !row.IsActive {
			t.Fatalf("detection %d row wrong: %+v", i, row)
		}
	}

	active, err := h.service.GetActive(ctx, h.inspection.ID)
	if err != nil || len(active) != 3 {
		t.Fatalf("GetActive: err=%v len=%d", err, len(active))
	}

	// The whole batch is one audit event.
	timeline, err := h.history.Full(ctx, h.inspection.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(timeline) != 1 || timeline[0].ActionType != types.HistoryAIDetectionRun {
		t.Fatalf("timeline = %d entries, first %s; want one AI_DETECTION_RUN", len(timeline), timeline[0].ActionType)
	}

	next, err := h.service.NextBoxNumber(ctx, h.inspection.ID)
	if err != nil || next != 4 {
		t.Fatalf("NextBoxNumber: err=%v next=%d, want 4", err, next)
	}
}

func TestAnnotationServiceFeedbackExport(t *testing.T) {
	h, ctx := newServiceHarness(t)

	detections, err := h.service.RecordDetectionBatch(ctx, h.inspection.ID, []Detection{
		{BboxX1: 10, BboxY1: 10, BboxX2: 40, BboxY2: 40, ClassID: 1, ClassName: "Loose Joint (Faulty)", Confidence: 0.9},
	}, "yolov8-2026.1", "system")
	if err != nil {
		t.Fatalf("RecordDetectionBatch: %v", err)
	}

	// A human reworks the AI box and adds one of their own.
	if _, err := h.service.Save(ctx, h.inspection.ID, SaveRequest{
		AnnotationID: &detections[0].ID,
		BboxX1:       12, BboxY1: 12, BboxX2: 44, BboxY2: 44,
		ClassID: detections[0].ClassID, ClassName: detections[0].ClassName,
	}, "inspector@example.com"); err != nil {
		t.Fatalf("edit detection: %v", err)
	}
	if _, err := h.service.Save(ctx, h.inspection.ID, SaveRequest{
		BboxX1: 100, BboxY1: 100, BboxX2: 140, BboxY2: 140,
	}, "inspector@example.com"); err != nil {
		t.Fatalf("add human box: %v", err)
	}

	report, err := h.feedback.Export(ctx, h.inspection.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	sum := report.Summary
	if sum.TotalAI != 1 || sum.TotalHuman != 1 {
		t.Fatalf("totals = ai:%d human:%d, want 1/1", sum.TotalAI, sum.TotalHuman)
	}
	if sum.Edited != 1 || sum.Added != 1 || sum.Approved != 0 || sum.Rejected != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(report.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(report.Items))
	}
	if report.Items[0].Action != "edited" || report.Items[0].HumanVersion == nil {
		t.Fatalf("item 0 = %+v, want edited with human version", report.Items[0])
	}
	if report.Items[1].Action != "added" {
		t.Fatalf("item 1 action = %q, want added", report.Items[1].Action)
	}
}

func TestFeedbackExportCountsApprovedHumanBox(t *testing.T) {
	h, ctx := newServiceHarness(t)
	className := "Point Overload (Faulty)"

	created, err := h.service.Save(ctx, h.inspection.ID, SaveRequest{
		BboxX1: 10, BboxY1: 10, BboxX2: 50, BboxY2: 50,
		ClassName: &className,
	}, "inspector@example.com")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := h.service.Approve(ctx, created.ID, "supervisor@example.com", nil); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	report, err := h.feedback.Export(ctx, h.inspection.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	sum := report.Summary
	if sum.TotalAI != 0 || sum.TotalHuman != 1 {
		t.Fatalf("totals = ai:%d human:%d, want 0/1", sum.TotalAI, sum.TotalHuman)
	}
	if sum.Added != 1 {
		t.Fatalf("added = %d, want 1 human-rooted lineage", sum.Added)
	}
	if sum.Approved != 1 {
		t.Fatalf("approved = %d, want 1 active row with approved action", sum.Approved)
	}
	if sum.Pending != 0 {
		t.Fatalf("pending = %d, want 0 after approval", sum.Pending)
	}
}

func TestAnnotationServiceCompletedInspectionReadOnly(t *testing.T) {
	h, ctx := newServiceHarness(t)

	seeded := testutil.SeedAnnotation(t, ctx, h.tx, h.inspection.ID, 1, types.SourceHuman)

	if err := h.tx.Model(&types.Inspection{}).
		Where("id = ?", h.inspection.ID).
		Update("status", types.InspectionCompleted).Error; err != nil {
		t.Fatalf("complete inspection: %v", err)
	}

	if _, err := h.service.Save(ctx, h.inspection.ID, SaveRequest{
		BboxX1: 1, BboxY1: 1, BboxX2: 5, BboxY2: 5,
	}, "x"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("save on completed: err = %v, want ErrValidation", err)
	}
	if _, err := h.service.Delete(ctx, seeded.ID, "x", nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("delete on completed: err = %v, want ErrValidation", err)
	}

	// Reads stay open.
	if _, err := h.service.GetActive(ctx, h.inspection.ID); err != nil {
		t.Fatalf("GetActive on completed: %v", err)
	}
}

func TestAnnotationServiceBatchAtomicity(t *testing.T) {
	h, ctx := newServiceHarness(t)

	// Second request is malformed, so nothing from the batch may land.
	_, err := h.service.SaveBatch(ctx, h.inspection.ID, []SaveRequest{
		{BboxX1: 1, BboxY1: 1, BboxX2: 10, BboxY2: 10},
		{BboxX1: 10, BboxY1: 10, BboxX2: 5, BboxY2: 5},
	}, "x")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad batch: err = %v, want ErrValidation", err)
	}
	active, err := h.service.GetActive(ctx, h.inspection.ID)
	if err != nil || len(active) != 0 {
		t.Fatalf("after failed batch: err=%v len=%d, want empty", err, len(active))
	}
}
