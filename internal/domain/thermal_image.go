package domain

import (
	"time"

	"github.com/google/uuid"
)

type ImageType string

const (
	ImageBaseline    ImageType = "BASELINE"
	ImageMaintenance ImageType = "MAINTENANCE"
)

type EnvCondition string

const (
	EnvSunny  EnvCondition = "SUNNY"
	EnvCloudy EnvCondition = "CLOUDY"
	EnvRainy  EnvCondition = "RAINY"
)

// ThermalImage records an uploaded image for a transformer. EnvCondition is
// required only for baseline images.
type ThermalImage struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TransformerID uuid.UUID `gorm:"type:uuid;not null;index" json:"transformer_id"`

	Type         ImageType     `gorm:"column:type;size:20;not null" json:"type"`
	EnvCondition *EnvCondition `gorm:"column:env_condition;size:20" json:"env_condition"`

	OriginalFilename string `gorm:"column:original_filename;size:255" json:"original_filename"`
	StoredFilename   string `gorm:"column:stored_filename;size:255" json:"stored_filename"`
	ContentType      string `gorm:"column:content_type;size:100" json:"content_type"`
	SizeBytes        int64  `gorm:"column:size_bytes" json:"size_bytes"`
	Uploader         string `gorm:"column:uploader;size:100" json:"uploader"`
	PublicURL        string `gorm:"column:public_url;size:512" json:"public_url"`

	UploadedAt time.Time `gorm:"column:uploaded_at;not null;default:now()" json:"uploaded_at"`
}

func (ThermalImage) TableName() string { return "thermal_images" }
