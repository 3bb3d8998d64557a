package maintenance

import (
	"context"
	"errors"
	"testing"

	"github.com/gridsight/gridsight-backend/internal/data/repos/testutil"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
)

func TestRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewRecordRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, tx, "AZ-5001")
	insp := testutil.SeedInspection(t, ctx, tx, tr.ID)

	rec, err := repo.Create(ctx, tx, &types.MaintenanceRecord{
		RecordNumber:      "MR-2026-0001",
		TransformerID:     tr.ID,
		InspectionID:      insp.ID,
		TransformerStatus: types.TransformerPartiallyWorking,
		Notes:             "two hotspots pending repair",
		CreatedBy:         "a@example.com",
		Anomalies: []types.MaintenanceRecordAnomaly{
			{
				BoxNumber:  testutil.PtrInt(1),
				ClassID:    2,
				ClassName:  "Loose Joint (Faulty)",
				Confidence: testutil.PtrFloat(0.93),
				BboxX1:     10, BboxY1: 20, BboxX2: 40, BboxY2: 80,
				Source: string(types.SourceAI),
			},
			{
				BoxNumber: testutil.PtrInt(2),
				ClassID:   3,
				ClassName: "Point Overload (Faulty)",
				BboxX1:    100, BboxY1: 120, BboxX2: 160, BboxY2: 190,
				Source: string(types.SourceHuman),
			},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Status != types.MaintenanceDraft {
		t.Fatalf("default status = %q, want DRAFT", rec.Status)
	}

	got, err := repo.GetByID(ctx, tx, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v", err)
	}
	if len(got.Anomalies) != 2 {
		t.Fatalf("anomalies = %d, want 2", len(got.Anomalies))
	}

	byInsp, err := repo.GetByInspection(ctx, tx, insp.ID)
	if err != nil || len(byInsp) != 1 {
		t.Fatalf("GetByInspection: err=%v len=%d", err, len(byInsp))
	}
	byTr, err := repo.GetByTransformer(ctx, tx, tr.ID)
	if err != nil || len(byTr) != 1 {
		t.Fatalf("GetByTransformer: err=%v len=%d", err, len(byTr))
	}

	updated, err := repo.Update(ctx, tx, rec.ID, map[string]interface{}{"notes": "one hotspot repaired"})
	if err != nil || updated.Notes != "one hotspot repaired" {
		t.Fatalf("Update: err=%v notes=%q", err, updated.Notes)
	}

	finalized, err := repo.Finalize(ctx, tx, rec.ID)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if finalized.Status != types.MaintenanceFinalized {
		t.Fatalf("status after finalize = %q", finalized.Status)
	}

	// Finalized records are frozen.
	if _, err := repo.Finalize(ctx, tx, rec.ID); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("double finalize: err = %v, want ErrValidation", err)
	}
	if _, err := repo.Update(ctx, tx, rec.ID, map[string]interface{}{"notes": "x"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("update after finalize: err = %v, want ErrValidation", err)
	}
	if err := repo.Delete(ctx, tx, rec.ID); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("delete after finalize: err = %v, want ErrValidation", err)
	}

	draft, err := repo.Create(ctx, tx, &types.MaintenanceRecord{
		RecordNumber:  "MR-2026-0002",
		TransformerID: tr.ID,
		InspectionID:  insp.ID,
	})
	if err != nil {
		t.Fatalf("Create draft: %v", err)
	}
	if err := repo.Delete(ctx, tx, draft.ID); err != nil {
		t.Fatalf("Delete draft: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, draft.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: err=%v got=%v", err, got)
	}
}
