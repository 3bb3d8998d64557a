package domain

import "testing"

func TestCategorizeAction(t *testing.T) {
	cases := []struct {
		action string
		want   HistoryCategory
	}{
		{HistoryInspectionCreated, CategoryInspectionLifecycle},
		{HistoryStatusChanged, CategoryInspectionLifecycle},
		{HistoryInspectionCompleted, CategoryInspectionLifecycle},
		{HistoryAIDetectionRun, CategoryAIAction},
		{HistoryBoxCreated, CategoryBoxModification},
		{HistoryBoxEdited, CategoryBoxModification},
		{HistoryBoxMoved, CategoryBoxModification},
		{HistoryBoxResized, CategoryBoxModification},
		{HistoryBoxApproved, CategoryBoxDecision},
		{HistoryBoxRejected, CategoryBoxDecision},
		{HistoryBoxDeleted, CategoryBoxDecision},
		{HistoryClassChanged, CategoryClassification},
		{HistoryConfidenceUpdated, CategoryClassification},
		{HistoryInspectorChanged, CategoryAccessControl},
		{"SOMETHING_ELSE", CategoryOther},
		{"", CategoryOther},
	}
	for _, tc := range cases {
		if got := CategorizeAction(tc.action); got != tc.want {
			t.Errorf("CategorizeAction(%q) = %q, want %q", tc.action, got, tc.want)
		}
	}
}
