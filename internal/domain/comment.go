package domain

import (
	"time"

	"github.com/google/uuid"
)

type InspectionComment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	InspectionID uuid.UUID `gorm:"type:uuid;not null;index" json:"inspection_id"`

	CommentText string `gorm:"column:comment_text;size:2048;not null" json:"comment_text"`
	Author      string `gorm:"column:author;size:100;not null" json:"author"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (InspectionComment) TableName() string { return "inspection_comments" }
