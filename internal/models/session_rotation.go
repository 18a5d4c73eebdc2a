package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRotation bridges a just-superseded refresh-token hash to the session
// it rotated into, for a short TTL. A second presentation after the record is
// consumed is a reuse signal, not a legitimate retry.
type SessionRotation struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID       string     `gorm:"size:50;not null;uniqueIndex:idx_rotations_site_hash" json:"-"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	OldJTI       string     `gorm:"size:36" json:"-"`
	OldTokenHash string     `gorm:"size:64;not null;uniqueIndex:idx_rotations_site_hash" json:"-"`
	NewSessionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"new_session_id"`
	TokenFamily  uuid.UUID  `gorm:"type:uuid;not null" json:"-"`
	Used         bool       `gorm:"not null;default:false" json:"used"`
	UsedAt       *time.Time `json:"used_at"`
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
