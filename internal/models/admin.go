package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin types as issued by the service-provider backend.
const (
	AdminTypeSuper = "SUPERADMIN"
	AdminTypeStaff = "ADMIN"
)

// Admin is a dashboard operator. It is the only record the dashboard
// persists locally; everything else lives behind the remote API.
type Admin struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	// AdminType gates page access; only AdminTypeSuper may manage notifications and workoffs.
	AdminType string `gorm:"size:50;not null;default:ADMIN" json:"admin_type"`
}

// IsSuper reports whether the admin holds the superadmin type.
func (a Admin) IsSuper() bool { return a.AdminType == AdminTypeSuper }
