package services

import (
	"testing"

	"github.com/google/uuid"
	types "github.com/gridsight/gridsight-backend/internal/domain"
)

func TestClassifyHead(t *testing.T) {
	cases := []struct {
		name   string
		action types.AnnotationAction
		active bool
		want   string
	}{
		{"untouched active detection", types.ActionCreated, true, "pending"},
		{"untouched inactive detection", types.ActionCreated, false, "deleted"},
		{"edited", types.ActionEdited, true, "edited"},
		{"approved", types.ActionApproved, true, "approved"},
		{"rejected", types.ActionRejected, false, "rejected"},
		{"deleted", types.ActionDeleted, false, "deleted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyHead(&types.Annotation{ActionType: tc.action, IsActive: tc.active})
			if got != tc.want {
				t.Fatalf("classifyHead = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLineageRoots(t *testing.T) {
	lineageA := uuid.New()
	lineageB := uuid.New()
	rows := []*types.Annotation{
		{ID: uuid.New(), LineageID: lineageA, Version: 2},
		{ID: uuid.New(), LineageID: lineageB, Version: 1},
		{ID: lineageA, LineageID: lineageA, Version: 1},
		{ID: uuid.New(), LineageID: lineageA, Version: 3},
	}

	roots := lineageRoots(rows)
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	for _, root := range roots {
		if root.Version != 1 {
			t.Fatalf("root has version %d, want 1", root.Version)
		}
	}
	if roots[1].ID != lineageA {
		t.Fatal("lineage A root is not the lineage id row")
	}
}

func TestFeedbackSummaryCount(t *testing.T) {
	var s FeedbackSummary
	for _, action := range []string{"approved", "rejected", "edited", "pending", "deleted", "approved"} {
		s.count(action)
	}
	if s.Approved != 2 || s.Rejected != 1 || s.Edited != 1 || s.Pending != 1 || s.Deleted != 1 {
		t.Fatalf("summary = %+v", s)
	}
}
