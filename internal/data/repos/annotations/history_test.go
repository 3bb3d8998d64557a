package annotations

import (
	"context"
	"errors"
	"testing"

	"github.com/gridsight/gridsight-backend/internal/data/repos/testutil"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"gorm.io/datatypes"
)

func TestHistoryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewHistoryRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, tx, "AZ-9100")
	insp := testutil.SeedInspection(t, ctx, tx, tr.ID)

	appendEntry := func(action string, box *int) {
		t.Helper()
		err := repo.Append(ctx, tx, &types.HistoryEntry{
			InspectionID: insp.ID,
			BoxNumber:    box,
			ActionType:   action,
			Description:  action,
			UserName:     "inspector@example.com",
			PreviousData: datatypes.JSON([]byte(`{"v":1}`)),
			NewData:      datatypes.JSON([]byte(`{"v":2}`)),

			InspectionNumber: insp.InspectionNo,
			InspectionStatus: string(insp.Status),
			CurrentInspector: insp.InspectedBy,
		})
		if err != nil {
			t.Fatalf("Append %s: %v", action, err)
		}
	}

	appendEntry(types.HistoryInspectionCreated, nil)
	appendEntry(types.HistoryBoxCreated, testutil.PtrInt(1))
	appendEntry(types.HistoryBoxEdited, testutil.PtrInt(1))
	appendEntry(types.HistoryBoxCreated, testutil.PtrInt(2))

	full, err := repo.FullByInspection(ctx, tx, insp.ID)
	if err != nil {
		t.Fatalf("FullByInspection: %v", err)
	}
	if len(full) != 4 {
		t.Fatalf("full len = %d, want 4", len(full))
	}
	// Newest first, with snapshots present.
	if full[0].ActionType != types.HistoryBoxCreated || full[0].BoxNumber == nil || *full[0].BoxNumber != 2 {
		t.Fatalf("full[0] = %s box=%v, want newest BOX_CREATED box 2", full[0].ActionType, full[0].BoxNumber)
	}
	if full[3].ActionType != types.HistoryInspectionCreated {
		t.Fatalf("full[3] = %s, want oldest INSPECTION_CREATED", full[3].ActionType)
	}
	if len(full[0].NewData) == 0 {
		t.Fatal("full query dropped the state snapshots")
	}

	recent, err := repo.RecentByInspection(ctx, tx, insp.ID, 2)
	if err != nil {
		t.Fatalf("RecentByInspection: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent len = %d, want 2", len(recent))
	}
	if len(recent[0].PreviousData) != 0 || len(recent[0].NewData) != 0 {
		t.Fatal("recent query should omit the state snapshots")
	}

	box1, err := repo.ByBox(ctx, tx, insp.ID, 1)
	if err != nil {
		t.Fatalf("ByBox: %v", err)
	}
	if len(box1) != 2 || box1[0].ActionType != types.HistoryBoxEdited {
		t.Fatalf("box 1 entries = %d, want edited then created", len(box1))
	}

	stats, err := repo.Statistics(ctx, tx, insp.ID)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalActions != 4 {
		t.Fatalf("total actions = %d, want 4", stats.TotalActions)
	}
	if stats.ActionCounts[types.HistoryBoxCreated] != 2 {
		t.Fatalf("BOX_CREATED count = %d, want 2", stats.ActionCounts[types.HistoryBoxCreated])
	}
	if stats.UserActivity["inspector@example.com"] != 4 {
		t.Fatalf("user activity = %v", stats.UserActivity)
	}
	if stats.FirstAction == nil || stats.LastAction == nil || stats.LastAction.Before(*stats.FirstAction) {
		t.Fatal("first/last action range wrong")
	}
	if len(stats.ContributingUsers) != 1 {
		t.Fatalf("contributing users = %v", stats.ContributingUsers)
	}
}

func TestHistoryRepoAppendValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewHistoryRepo(db, testutil.Logger(t))

	if err := repo.Append(ctx, tx, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Append(nil): err = %v, want ErrValidation", err)
	}
	if err := repo.Append(ctx, tx, &types.HistoryEntry{ActionType: "X"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Append missing inspection: err = %v, want ErrValidation", err)
	}
}
