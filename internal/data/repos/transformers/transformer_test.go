package transformers

import (
	"context"
	"errors"
	"testing"

	"github.com/gridsight/gridsight-backend/internal/data/repos/testutil"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
)

func TestTransformerRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewTransformerRepo(db, testutil.Logger(t))

	tr, err := repo.Create(ctx, tx, &types.Transformer{
		Code:        "AZ-1649",
		Location:    "Kotte Junction",
		Region:      "Western",
		PoleNo:      "EN-122-A",
		Type:        "Bulk",
		CapacityKVA: testutil.PtrInt(500),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.Create(ctx, tx, &types.Transformer{}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Create without code: err = %v, want ErrValidation", err)
	}

	byCode, err := repo.GetByCode(ctx, tx, "AZ-1649")
	if err != nil || byCode == nil || byCode.ID != tr.ID {
		t.Fatalf("GetByCode: err=%v", err)
	}
	if missing, err := repo.GetByCode(ctx, tx, "nope"); err != nil || missing != nil {
		t.Fatalf("GetByCode missing: err=%v got=%v", err, missing)
	}

	if _, err := repo.Create(ctx, tx, &types.Transformer{Code: "AZ-1650", Location: "Dehiwala", Region: "Southern"}); err != nil {
		t.Fatalf("seed second: %v", err)
	}

	rows, total, err := repo.List(ctx, tx, "Western", 10, 0)
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("List Western: err=%v total=%d len=%d", err, total, len(rows))
	}
	rows, total, err = repo.List(ctx, tx, "", 10, 0)
	if err != nil || total != 2 || len(rows) != 2 {
		t.Fatalf("List all: err=%v total=%d len=%d", err, total, len(rows))
	}
	if rows[0].Code != "AZ-1649" {
		t.Fatalf("list order = %q first, want AZ-1649", rows[0].Code)
	}

	updated, err := repo.Update(ctx, tx, tr.ID, map[string]interface{}{"location": "Kotte Junction North"})
	if err != nil || updated.Location != "Kotte Junction North" {
		t.Fatalf("Update: err=%v loc=%q", err, updated.Location)
	}

	if err := repo.Delete(ctx, tx, tr.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, tx, tr.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second Delete: err = %v, want ErrNotFound", err)
	}
}

func TestThermalImageRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewThermalImageRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, tx, "AZ-1651")

	sunny := types.EnvSunny
	baseline, err := repo.Create(ctx, tx, &types.ThermalImage{
		TransformerID:    tr.ID,
		Type:             types.ImageBaseline,
		EnvCondition:     &sunny,
		OriginalFilename: "baseline.jpg",
		StoredFilename:   "b-1.jpg",
		ContentType:      "image/jpeg",
		SizeBytes:        2048,
		Uploader:         "a@example.com",
	})
	if err != nil {
		t.Fatalf("Create baseline: %v", err)
	}

	// Baseline without weather is rejected.
	if _, err := repo.Create(ctx, tx, &types.ThermalImage{TransformerID: tr.ID, Type: types.ImageBaseline}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("baseline without condition: err = %v, want ErrValidation", err)
	}

	// Maintenance images need no weather.
	if _, err := repo.Create(ctx, tx, &types.ThermalImage{
		TransformerID:    tr.ID,
		Type:             types.ImageMaintenance,
		OriginalFilename: "maint.jpg",
		StoredFilename:   "m-1.jpg",
	}); err != nil {
		t.Fatalf("Create maintenance: %v", err)
	}

	all, err := repo.GetByTransformer(ctx, tx, tr.ID, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("GetByTransformer: err=%v len=%d", err, len(all))
	}
	bType := types.ImageBaseline
	baselines, err := repo.GetByTransformer(ctx, tx, tr.ID, &bType)
	if err != nil || len(baselines) != 1 {
		t.Fatalf("GetByTransformer baseline: err=%v len=%d", err, len(baselines))
	}

	latest, err := repo.LatestBaseline(ctx, tx, tr.ID)
	if err != nil || latest == nil || latest.ID != baseline.ID {
		t.Fatalf("LatestBaseline: err=%v", err)
	}

	if err := repo.Delete(ctx, tx, baseline.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if latest, err := repo.LatestBaseline(ctx, tx, tr.ID); err != nil || latest != nil {
		t.Fatalf("LatestBaseline after delete: err=%v got=%v", err, latest)
	}
}
