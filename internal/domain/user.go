package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleInspector UserRole = "INSPECTOR"
	RoleAdmin     UserRole = "ADMIN"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name     string    `gorm:"column:name;size:100;not null" json:"name"`
	Email    string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"column:password;not null" json:"-"`
	Role     UserRole  `gorm:"column:role;size:20;not null;default:INSPECTOR" json:"role"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "users" }
