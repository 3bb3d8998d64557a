package domain

import (
	"time"

	"github.com/google/uuid"
)

type InspectionStatus string

const (
	InspectionInProgress InspectionStatus = "IN_PROGRESS"
	InspectionPending    InspectionStatus = "PENDING"
	InspectionCompleted  InspectionStatus = "COMPLETED"
)

func (s InspectionStatus) Valid() bool {
	switch s {
	case InspectionInProgress, InspectionPending, InspectionCompleted:
		return true
	}
	return false
}

type Inspection struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	InspectionNo  string    `gorm:"column:inspection_no;size:50;not null;uniqueIndex" json:"inspection_no"`
	TransformerID uuid.UUID `gorm:"type:uuid;not null;index" json:"transformer_id"`

	Branch          string     `gorm:"column:branch;size:100;not null" json:"branch"`
	InspectionDate  time.Time  `gorm:"column:inspection_date;not null" json:"inspection_date"`
	InspectionTime  string     `gorm:"column:inspection_time;size:8;not null" json:"inspection_time"`
	MaintenanceDate *time.Time `gorm:"column:maintenance_date" json:"maintenance_date"`
	MaintenanceTime *string    `gorm:"column:maintenance_time;size:8" json:"maintenance_time"`

	Status      InspectionStatus `gorm:"column:status;size:20;not null;default:IN_PROGRESS" json:"status"`
	InspectedBy string           `gorm:"column:inspected_by;size:100;not null" json:"inspected_by"`
	Notes       string           `gorm:"column:notes;size:2048" json:"notes"`

	ImagePath          *string `gorm:"column:image_path" json:"image_path"`
	AnnotatedImagePath *string `gorm:"column:annotated_image_path" json:"annotated_image_path"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Inspection) TableName() string { return "inspections" }
