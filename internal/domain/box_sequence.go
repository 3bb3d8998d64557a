package domain

import (
	"time"

	"github.com/google/uuid"
)

// BoxNumberSequence holds the per-inspection counter behind box numbering.
// NextBoxNumber never decreases except through an explicit repair.
type BoxNumberSequence struct {
	InspectionID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"inspection_id"`
	NextBoxNumber int       `gorm:"column:next_box_number;not null;default:1" json:"next_box_number"`
	LastUpdatedAt time.Time `gorm:"column:last_updated_at;not null;default:now()" json:"last_updated_at"`
}

func (BoxNumberSequence) TableName() string { return "box_numbering_sequences" }
