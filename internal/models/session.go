package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one logical login on one device, per site. The row is the sole
// source of truth for whether a refresh token is currently valid; only its
// hash is stored. The row id persists across rotations of the same family,
// only hash/jti/version/expiry change.
type Session struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID string    `gorm:"size:50;not null;uniqueIndex:idx_sessions_site_hash" json:"-"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	// User snapshot, denormalized at creation/rotation time so reads skip a join.
	UserEmail string `gorm:"size:255;not null" json:"user_email"`
	UserTier  string `gorm:"size:20;not null" json:"user_tier"`
	UserName  string `gorm:"size:100" json:"user_name"`

	RefreshTokenHash string    `gorm:"size:64;not null;uniqueIndex:idx_sessions_site_hash" json:"-"`
	AccessTokenJTI   string    `gorm:"size:36;index" json:"-"`
	TokenFamily      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	TokenVersion     int       `gorm:"not null;default:1" json:"-"`

	IPAddress     string `gorm:"size:64" json:"ip_address"`
	UserAgent     string `gorm:"size:512" json:"user_agent"`
	DeviceBrowser string `gorm:"size:20" json:"device_browser"`
	DeviceOS      string `gorm:"size:20" json:"device_os"`
	DeviceForm    string `gorm:"size:20" json:"device_form"`

	ExpiresAt  time.Time `gorm:"not null;index" json:"expires_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
