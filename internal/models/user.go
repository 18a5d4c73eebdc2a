package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// User is a reader account, scoped to exactly one site.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID      string         `gorm:"size:50;not null;uniqueIndex:idx_users_site_email" json:"-"`
	Email       string         `gorm:"not null;size:255;uniqueIndex:idx_users_site_email" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `gorm:"size:100" json:"display_name"`
	Tier        string         `gorm:"size:20;default:'free'" json:"tier"`
	IsActive    bool           `gorm:"default:true" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
