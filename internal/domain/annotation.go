package domain

import (
	"time"

	"github.com/google/uuid"
)

type AnnotationSource string

const (
	SourceAI    AnnotationSource = "ai"
	SourceHuman AnnotationSource = "human"
)

type AnnotationAction string

const (
	ActionCreated  AnnotationAction = "created"
	ActionEdited   AnnotationAction = "edited"
	ActionDeleted  AnnotationAction = "deleted"
	ActionApproved AnnotationAction = "approved"
	ActionRejected AnnotationAction = "rejected"
)

// IsTerminal reports whether the action ends a lineage's eligibility for
// further edits.
func (a AnnotationAction) IsTerminal() bool {
	return a == ActionDeleted || a == ActionApproved || a == ActionRejected
}

// Annotation is one immutable snapshot of a bounding-box judgment. Edits never
// mutate a row: they deactivate it and append a successor with version+1.
// Approve/reject/delete are in-place metadata mutations on the head row.
//
// LineageID is the id of the first version in the chain, denormalized onto
// every row so the full forward chain is a single indexed query instead of a
// backward walk over ParentAnnotationID.
type Annotation struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	InspectionID uuid.UUID `gorm:"type:uuid;not null;index:idx_annotations_inspection" json:"inspection_id"`
	LineageID    uuid.UUID `gorm:"type:uuid;not null;index:idx_annotations_lineage" json:"lineage_id"`
	Version      int       `gorm:"not null;default:1" json:"version"`

	BoxNumber *int `gorm:"column:box_number;index" json:"box_number"`

	BboxX1 int `gorm:"column:bbox_x1;not null" json:"bbox_x1"`
	BboxY1 int `gorm:"column:bbox_y1;not null" json:"bbox_y1"`
	BboxX2 int `gorm:"column:bbox_x2;not null" json:"bbox_x2"`
	BboxY2 int `gorm:"column:bbox_y2;not null" json:"bbox_y2"`

	ClassID    *int     `gorm:"column:class_id" json:"class_id"`
	ClassName  *string  `gorm:"column:class_name;size:50" json:"class_name"`
	Confidence *float64 `gorm:"column:confidence;type:decimal(5,3)" json:"confidence"`

	Source     AnnotationSource `gorm:"column:source;size:10;not null" json:"source"`
	ActionType AnnotationAction `gorm:"column:action_type;size:20;not null;default:created" json:"action_type"`

	CreatedBy  string     `gorm:"column:created_by;size:100" json:"created_by"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	ModifiedBy *string    `gorm:"column:modified_by;size:100" json:"modified_by"`
	ModifiedAt *time.Time `gorm:"column:modified_at" json:"modified_at"`

	ParentAnnotationID *uuid.UUID `gorm:"type:uuid;column:parent_annotation_id;index" json:"parent_annotation_id"`
	IsActive           bool       `gorm:"column:is_active;not null;default:true;index:idx_annotations_inspection_active" json:"is_active"`

	Comments *string `gorm:"column:comments;type:text" json:"comments"`

	// Extended fields; none of them participate in lineage rules.
	SizePx        *int64   `gorm:"column:size_px" json:"size_px"`
	SeverityScore *float64 `gorm:"column:severity_score;type:decimal(5,2)" json:"severity_score"`
	Flagged       bool     `gorm:"column:flagged;not null;default:false" json:"flagged"`
}

func (Annotation) TableName() string { return "annotations" }

// NewVersion copies the lineage-invariant and mutable fields into a fresh
// successor row pointing back at a.
func (a *Annotation) NewVersion() *Annotation {
	parentID := a.ID
	return &Annotation{
		ID:                 uuid.New(),
		InspectionID:       a.InspectionID,
		LineageID:          a.LineageID,
		Version:            a.Version + 1,
		BoxNumber:          a.BoxNumber,
		BboxX1:             a.BboxX1,
		BboxY1:             a.BboxY1,
		BboxX2:             a.BboxX2,
		BboxY2:             a.BboxY2,
		ClassID:            a.ClassID,
		ClassName:          a.ClassName,
		Confidence:         a.Confidence,
		Source:             a.Source,
		ActionType:         ActionEdited,
		Comments:           a.Comments,
		SizePx:             a.SizePx,
		SeverityScore:      a.SeverityScore,
		Flagged:            a.Flagged,
		ParentAnnotationID: &parentID,
		IsActive:           true,
	}
}

// Area returns the pixel area of the box, never negative for a valid bbox.
func (a *Annotation) Area() int64 {
	return int64(a.BboxX2-a.BboxX1) * int64(a.BboxY2-a.BboxY1)
}
