package annotations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gridsight/gridsight-backend/internal/data/repos/testutil"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
)

func TestBoxSequenceRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewBoxSequenceRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, tx, "AZ-9001")
	insp := testutil.SeedInspection(t, ctx, tx, tr.ID)

	// No counter row yet: peek reports 1 without creating anything.
	next, err := repo.Peek(ctx, tx, insp.ID)
	if err != nil || next != 1 {
		t.Fatalf("Peek before init: err=%v next=%d", err, next)
	}

	nums, err := repo.Allocate(ctx, tx, insp.ID, 1)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(nums) != 1 || nums[0] != 1 {
		t.Fatalf("first allocation = %v, want [1]", nums)
	}

	nums, err = repo.Allocate(ctx, tx, insp.ID, 3)
	if err != nil {
		t.Fatalf("Allocate batch: %v", err)
	}
	if len(nums) != 3 || nums[0] != 2 || nums[2] != 4 {
		t.Fatalf("batch allocation = %v, want [2 3 4]", nums)
	}

	next, err = repo.Peek(ctx, tx, insp.ID)
	if err != nil || next != 5 {
		t.Fatalf("Peek after allocations: err=%v next=%d", err, next)
	}

	if _, err := repo.Allocate(ctx, tx, insp.ID, 0); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Allocate(0): err = %v, want ErrValidation", err)
	}

	// Numbers are never reused: deleting annotations does not rewind the
	// counter, only an explicit repair does.
	a := testutil.SeedAnnotation(t, ctx, tx, insp.ID, 4, types.SourceHuman)
	b := testutil.SeedAnnotation(t, ctx, tx, insp.ID, 9, types.SourceHuman)
	_ = a

	repaired, err := repo.Repair(ctx, tx, insp.ID)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if repaired != 10 {
		t.Fatalf("repaired counter = %d, want 10 (1 + max active box)", repaired)
	}

	// Deactivate the highest box and repair again.
	if err := tx.WithContext(ctx).Model(&types.Annotation{}).
		Where("id = ?", b.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	repaired, err = repo.Repair(ctx, tx, insp.ID)
	if err != nil || repaired != 5 {
		t.Fatalf("second repair: err=%v next=%d, want 5", err, repaired)
	}

	if err := repo.DeleteByInspection(ctx, tx, insp.ID); err != nil {
		t.Fatalf("DeleteByInspection: %v", err)
	}
	next, err = repo.Peek(ctx, tx, insp.ID)
	if err != nil || next != 1 {
		t.Fatalf("Peek after delete: err=%v next=%d", err, next)
	}
}

func TestBoxSequenceRepoIsolatedPerInspection(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewBoxSequenceRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, tx, "AZ-9002")
	first := testutil.SeedInspection(t, ctx, tx, tr.ID)
	second := testutil.SeedInspection(t, ctx, tx, tr.ID)

	if _, err := repo.Allocate(ctx, tx, first.ID, 5); err != nil {
		t.Fatalf("Allocate first: %v", err)
	}
	nums, err := repo.Allocate(ctx, tx, second.ID, 1)
	if err != nil {
		t.Fatalf("Allocate second: %v", err)
	}
	if nums[0] != 1 {
		t.Fatalf("second inspection started at %d, want 1", nums[0])
	}
}

// Allocations race on the pooled handle here, not inside a shared test
// transaction, so each caller takes its own row lock.
func TestBoxSequenceRepoConcurrentAllocate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	repo := NewBoxSequenceRepo(db, testutil.Logger(t))

	tr := testutil.SeedTransformer(t, ctx, db, "AZ-"+uuid.NewString()[:8])
	insp := testutil.SeedInspection(t, ctx, db, tr.ID)
	t.Cleanup(func() {
		cleanupCtx := context.Background()
		_ = repo.DeleteByInspection(cleanupCtx, nil, insp.ID)
		_ = db.WithContext(cleanupCtx).Delete(&types.Inspection{}, "id = ?", insp.ID).Error
		_ = db.WithContext(cleanupCtx).Delete(&types.Transformer{}, "id = ?", tr.ID).Error
	})

	const callers = 8
	const perCall = 3

	results := make([][]int, callers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			nums, err := repo.Allocate(gctx, nil, insp.ID, perCall)
			if err != nil {
				return err
			}
			results[i] = nums
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Allocate: %v", err)
	}

	seen := make(map[int]int)
	for i, nums := range results {
		if len(nums) != perCall {
			t.Fatalf("caller %d got %v, want %d numbers", i, nums, perCall)
		}
		for j := 1; j < len(nums); j++ {
			if nums[j] != nums[j-1]+1 {
				t.Fatalf("caller %d range %v is not consecutive", i, nums)
			}
		}
		for _, n := range nums {
			seen[n]++
		}
	}
	for n := 1; n <= callers*perCall; n++ {
		if seen[n] != 1 {
			t.Fatalf("number %d allocated %d times, want exactly once", n, seen[n])
		}
	}

	next, err := repo.Peek(ctx, nil, insp.ID)
	if err != nil || next != callers*perCall+1 {
		t.Fatalf("Peek after races: err=%v next=%d, want %d", err, next, callers*perCall+1)
	}
}
