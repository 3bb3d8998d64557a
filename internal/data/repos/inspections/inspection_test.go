package inspections

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gridsight/gridsight-backend/internal/data/repos/testutil"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
)

func TestInspectionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewInspectionRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, tx, "AZ-7001")

	insp, err := repo.Create(ctx, tx, &types.Inspection{
		InspectionNo:   "1017230",
		TransformerID:  tr.ID,
		Branch:         "Nugegoda",
		InspectionDate: time.Now().UTC().Truncate(24 * time.Hour),
		InspectionTime: "12:05:00",
		InspectedBy:    "a@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if insp.Status != types.InspectionInProgress {
		t.Fatalf("default status = %q, want IN_PROGRESS", insp.Status)
	}

	got, err := repo.GetByID(ctx, tx, insp.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	byNo, err := repo.GetByNumber(ctx, tx, "1017230")
	if err != nil || byNo == nil || byNo.ID != insp.ID {
		t.Fatalf("GetByNumber: err=%v", err)
	}

	byTr, err := repo.GetByTransformer(ctx, tx, tr.ID)
	if err != nil || len(byTr) != 1 {
		t.Fatalf("GetByTransformer: err=%v len=%d", err, len(byTr))
	}

	completed := types.InspectionCompleted
	if rows, total, err := repo.List(ctx, tx, &completed, 10, 0); err != nil || total != 0 || len(rows) != 0 {
		t.Fatalf("List completed: err=%v total=%d", err, total)
	}

	updated, err := repo.Update(ctx, tx, insp.ID, map[string]interface{}{
		"status": types.InspectionCompleted,
		"notes":  "no faults remaining",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != types.InspectionCompleted || updated.Notes != "no faults remaining" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := repo.Update(ctx, tx, uuid.New(), map[string]interface{}{"notes": "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Update missing: err = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, tx, insp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, tx, insp.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second Delete: err = %v, want ErrNotFound", err)
	}
	if got, err := repo.GetByID(ctx, tx, insp.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: err=%v got=%v", err, got)
	}
}

func TestCommentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewCommentRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, tx, "AZ-7002")
	insp := testutil.SeedInspection(t, ctx, tx, tr.ID)

	c, err := repo.Create(ctx, tx, &types.InspectionComment{
		InspectionID: insp.ID,
		CommentText:  "left bushing looks corroded",
		Author:       "a@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.Create(ctx, tx, &types.InspectionComment{InspectionID: insp.ID}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Create empty: err = %v, want ErrValidation", err)
	}

	rows, err := repo.GetByInspection(ctx, tx, insp.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByInspection: err=%v len=%d", err, len(rows))
	}

	updated, err := repo.Update(ctx, tx, c.ID, "left bushing replaced")
	if err != nil || updated.CommentText != "left bushing replaced" {
		t.Fatalf("Update: err=%v text=%q", err, updated.CommentText)
	}

	if err := repo.Delete(ctx, tx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, tx, c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second Delete: err = %v, want ErrNotFound", err)
	}
}
