package domain

import (
	"time"

	"github.com/google/uuid"
)

type Transformer struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code            string    `gorm:"column:code;size:50;not null;uniqueIndex" json:"code"`
	Location        string    `gorm:"column:location;size:255;not null" json:"location"`
	CapacityKVA     *int      `gorm:"column:capacity_kva" json:"capacity_kva"`
	Region          string    `gorm:"column:region;size:100" json:"region"`
	PoleNo          string    `gorm:"column:pole_no;size:50" json:"pole_no"`
	Type            string    `gorm:"column:type;size:50" json:"type"`
	LocationDetails string    `gorm:"column:location_details;size:2048" json:"location_details"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Transformer) TableName() string { return "transformers" }
