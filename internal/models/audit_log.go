package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SiteID    string         `gorm:"size:50;not null;index" json:"-"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	EventType string         `gorm:"size:50;not null;index" json:"event_type"`
	Resource  string         `gorm:"size:100" json:"resource"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	IPAddress string         `gorm:"size:64" json:"ip_address"`
	UserAgent string         `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
