package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenanceDraft     MaintenanceStatus = "DRAFT"
	MaintenanceFinalized MaintenanceStatus = "FINALIZED"
)

type TransformerStatus string

const (
	TransformerWorking          TransformerStatus = "WORKING"
	TransformerNotWorking       TransformerStatus = "NOT_WORKING"
	TransformerPartiallyWorking TransformerStatus = "PARTIALLY_WORKING"
)

type MaintenanceRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RecordNumber  string    `gorm:"column:record_number;size:50;not null;uniqueIndex" json:"record_number"`
	TransformerID uuid.UUID `gorm:"type:uuid;not null;index" json:"transformer_id"`
	InspectionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"inspection_id"`

	Status            MaintenanceStatus `gorm:"column:status;size:20;not null;default:DRAFT" json:"status"`
	TransformerStatus TransformerStatus `gorm:"column:transformer_status;size:30" json:"transformer_status"`
	Notes             string            `gorm:"column:notes;size:2048" json:"notes"`
	CreatedBy         string            `gorm:"column:created_by;size:100" json:"created_by"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Anomalies []MaintenanceRecordAnomaly `gorm:"foreignKey:MaintenanceRecordID" json:"anomalies,omitempty"`
}

func (MaintenanceRecord) TableName() string { return "maintenance_records" }

// MaintenanceRecordAnomaly is an immutable snapshot of an active annotation
// taken when the record is created, so the record survives later edits to the
// annotations it was based on.
type MaintenanceRecordAnomaly struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MaintenanceRecordID uuid.UUID `gorm:"type:uuid;not null;index" json:"maintenance_record_id"`

	BoxNumber  *int     `gorm:"column:box_number" json:"box_number"`
	ClassID    int      `gorm:"column:class_id;not null" json:"class_id"`
	ClassName  string   `gorm:"column:class_name;size:50;not null" json:"class_name"`
	Confidence *float64 `gorm:"column:confidence;type:decimal(5,3)" json:"confidence"`

	BboxX1 int `gorm:"column:bbox_x1;not null" json:"bbox_x1"`
	BboxY1 int `gorm:"column:bbox_y1;not null" json:"bbox_y1"`
	BboxX2 int `gorm:"column:bbox_x2;not null" json:"bbox_x2"`
	BboxY2 int `gorm:"column:bbox_y2;not null" json:"bbox_y2"`

	Source string `gorm:"column:source;size:20" json:"source"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (MaintenanceRecordAnomaly) TableName() string { return "maintenance_record_anomalies" }
