package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Action-type vocabulary for history entries. Anything outside this set
// categorizes as CategoryOther.
const (
	HistoryInspectionCreated   = "INSPECTION_CREATED"
	HistoryStatusChanged       = "STATUS_CHANGED"
	HistoryInspectionCompleted = "INSPECTION_COMPLETED"
	HistoryAIDetectionRun      = "AI_DETECTION_RUN"
	HistoryBoxCreated          = "BOX_CREATED"
	HistoryBoxEdited           = "BOX_EDITED"
	HistoryBoxMoved            = "BOX_MOVED"
	HistoryBoxResized          = "BOX_RESIZED"
	HistoryBoxApproved         = "BOX_APPROVED"
	HistoryBoxRejected         = "BOX_REJECTED"
	HistoryBoxDeleted          = "BOX_DELETED"
	HistoryClassChanged        = "CLASS_CHANGED"
	HistoryConfidenceUpdated   = "CONFIDENCE_UPDATED"
	HistoryInspectorChanged    = "INSPECTOR_CHANGED"
)

type HistoryCategory string

const (
	CategoryInspectionLifecycle HistoryCategory = "inspection_lifecycle"
	CategoryAIAction            HistoryCategory = "ai_action"
	CategoryBoxModification     HistoryCategory = "box_modification"
	CategoryBoxDecision         HistoryCategory = "box_decision"
	CategoryClassification      HistoryCategory = "classification"
	CategoryAccessControl       HistoryCategory = "access_control"
	CategoryOther               HistoryCategory = "other"
)

// CategorizeAction buckets a history action type for querying and display.
func CategorizeAction(actionType string) HistoryCategory {
	switch actionType {
	case HistoryInspectionCreated, HistoryStatusChanged, HistoryInspectionCompleted:
		return CategoryInspectionLifecycle
	case HistoryAIDetectionRun:
		return CategoryAIAction
	case HistoryBoxCreated, HistoryBoxEdited, HistoryBoxMoved, HistoryBoxResized:
		return CategoryBoxModification
	case HistoryBoxApproved, HistoryBoxRejected, HistoryBoxDeleted:
		return CategoryBoxDecision
	case HistoryClassChanged, HistoryConfidenceUpdated:
		return CategoryClassification
	case HistoryInspectorChanged:
		return CategoryAccessControl
	default:
		return CategoryOther
	}
}

// HistoryEntry is an append-only audit record. Rows are inserted once and
// never updated or deleted; CreatedAt is the natural ordering key.
// BoxNumber is nil for inspection-level events.
type HistoryEntry struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	// Seq is a database-assigned insertion counter; CreatedAt alone cannot
	// break ties between appends landing in the same instant.
	Seq int64 `gorm:"column:seq;autoIncrement;uniqueIndex" json:"-"`

	InspectionID uuid.UUID `gorm:"type:uuid;not null;index:idx_history_inspection" json:"inspection_id"`
	BoxNumber    *int      `gorm:"column:box_number;index:idx_history_box" json:"box_number"`

	ActionType  string `gorm:"column:action_type;size:50;not null" json:"action_type"`
	Description string `gorm:"column:action_description;size:1024" json:"description"`
	UserName    string `gorm:"column:user_name;size:100;not null" json:"user_name"`

	PreviousData datatypes.JSON `gorm:"column:previous_data" json:"previous_data,omitempty"`
	NewData      datatypes.JSON `gorm:"column:new_data" json:"new_data,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();index:idx_history_created" json:"created_at"`

	// Denormalized from the inspection at time of write.
	InspectionNumber string `gorm:"column:inspection_number;size:50" json:"inspection_number"`
	InspectionStatus string `gorm:"column:inspection_status;size:20" json:"inspection_status"`
	CurrentInspector string `gorm:"column:current_inspector;size:100" json:"current_inspector"`
}

func (HistoryEntry) TableName() string { return "inspection_history" }

// HistoryStatistics summarizes activity over one inspection's history.
type HistoryStatistics struct {
	TotalActions      int            `json:"total_actions"`
	ActionCounts      map[string]int `json:"action_counts"`
	UserActivity      map[string]int `json:"user_activity"`
	FirstAction       *time.Time     `json:"first_action"`
	LastAction        *time.Time     `json:"last_action"`
	ContributingUsers []string       `json:"contributing_users"`
}
