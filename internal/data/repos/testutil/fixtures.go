package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     "Test Inspector",
		Email:    email,
		Password: "pw",
		Role:     types.RoleInspector,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTransformer(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Transformer {
	tb.Helper()
	tr := &types.Transformer{
		ID:       uuid.New(),
		Code:     code,
		Location: "Substation A",
		Region:   "Western",
		PoleNo:   "EN-122",
		Type:     "Distribution",
	}
	if err := tx.WithContext(ctx).Create(tr).Error; err != nil {
		tb.Fatalf("seed transformer: %v", err)
	}
	return tr
}

func SeedInspection(tb testing.TB, ctx context.Context, tx *gorm.DB, transformerID uuid.UUID) *types.Inspection {
	tb.Helper()
	insp := &types.Inspection{
		ID:             uuid.New(),
		InspectionNo:   fmt.Sprintf("INS-%s", uuid.NewString()[:8]),
		TransformerID:  transformerID,
		Branch:         "Colombo",
		InspectionDate: time.Now().UTC().Truncate(24 * time.Hour),
		InspectionTime: "09:30:00",
		Status:         types.InspectionInProgress,
		InspectedBy:    "inspector@example.com",
	}
	if err := tx.WithContext(ctx).Create(insp).Error; err != nil {
		tb.Fatalf("seed inspection: %v", err)
	}
	return insp
}

func SeedAnnotation(tb testing.TB, ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, boxNumber int, source types.AnnotationSource) *types.Annotation {
	tb.Helper()
	id := uuid.New()
	a := &types.Annotation{
		ID:           id,
		InspectionID: inspectionID,
		LineageID:    id,
		Version:      1,
		BoxNumber:    PtrInt(boxNumber),
		BboxX1:       10, BboxY1: 20, BboxX2: 110, BboxY2: 220,
		ClassID:    PtrInt(1),
		ClassName:  PtrString("Point Overload (Faulty)"),
		Confidence: PtrFloat(0.87),
		Source:     source,
		ActionType: types.ActionCreated,
		CreatedBy:  "inspector@example.com",
		IsActive:   true,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed annotation: %v", err)
	}
	return a
}

func PtrInt(v int) *int           { return &v }
func PtrFloat(v float64) *float64 { return &v }
func PtrString(v string) *string  { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
