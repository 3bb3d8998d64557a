package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gridsight/gridsight-backend/internal/data/repos/testutil"
	types "github.com/gridsight/gridsight-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))

	u, err := repo.Create(ctx, tx, &types.User{
		Name:     "A B",
		Email:    "userrepo@example.com",
		Password: "hashed",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != types.RoleInspector {
		t.Fatalf("default role = %q, want INSPECTOR", u.Role)
	}

	byEmail, err := repo.GetByEmail(ctx, tx, "userrepo@example.com")
	if err != nil || byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail: err=%v", err)
	}
	if missing, err := repo.GetByEmail(ctx, tx, "nobody@example.com"); err != nil || missing != nil {
		t.Fatalf("GetByEmail missing: err=%v got=%v", err, missing)
	}

	if err := repo.UpdatePassword(ctx, tx, u.ID, "rehashed"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, u.ID)
	if err != nil || got.Password != "rehashed" {
		t.Fatalf("password not updated: err=%v", err)
	}
}

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserTokenRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "usertokenrepo@example.com")

	tok, err := repo.Create(ctx, tx, &types.UserToken{
		UserID:       u.ID,
		AccessToken:  "at-" + uuid.NewString(),
		RefreshToken: "rt-" + uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byAT, err := repo.GetByAccessToken(ctx, tx, tok.AccessToken)
	if err != nil || byAT == nil || byAT.ID != tok.ID {
		t.Fatalf("GetByAccessToken: err=%v", err)
	}
	byRT, err := repo.GetByRefreshToken(ctx, tx, tok.RefreshToken)
	if err != nil || byRT == nil || byRT.ID != tok.ID {
		t.Fatalf("GetByRefreshToken: err=%v", err)
	}

	expired := &types.UserToken{
		UserID:       u.ID,
		AccessToken:  "at-" + uuid.NewString(),
		RefreshToken: "rt-" + uuid.NewString(),
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	if _, err := repo.Create(ctx, tx, expired); err != nil {
		t.Fatalf("seed expired: %v", err)
	}
	purged, err := repo.DeleteExpired(ctx, tx)
	if err != nil || purged != 1 {
		t.Fatalf("DeleteExpired: err=%v purged=%d", err, purged)
	}

	if err := repo.DeleteByUser(ctx, tx, u.ID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	if got, err := repo.GetByAccessToken(ctx, tx, tok.AccessToken); err != nil || got != nil {
		t.Fatalf("GetByAccessToken after delete: err=%v got=%v", err, got)
	}
}
