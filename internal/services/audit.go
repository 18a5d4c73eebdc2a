package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditSignup        = "user_signup"
	AuditLoginSuccess  = "login_success"
	AuditLoginFailed   = "login_failed"
	AuditRefreshed     = "token_refreshed"
	AuditRefreshReused = "token_refresh_reused"
	AuditReuseDetected = "token_reuse_detected"
	AuditLogout        = "logout"
	AuditLogoutAll     = "logout_all"
)

type AuditEntry struct {
	SiteID    string
	UserID    *uuid.UUID
	EventType string
	Resource  string
	Metadata  map[string]interface{}
	IPAddress string
	UserAgent string
}

// AuditSink records security-relevant events. Recording is best effort; a
// failed audit write must never fail the request it describes.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}

type GormAuditSink struct {
	db *gorm.DB
}

func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

func (s *GormAuditSink) Record(ctx context.Context, entry AuditEntry) {
	row := models.AuditLog{
		ID:        uuid.New(),
		SiteID:    entry.SiteID,
		UserID:    entry.UserID,
		EventType: entry.EventType,
		Resource:  entry.Resource,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}

	if len(entry.Metadata) > 0 {
		if b, err := json.Marshal(entry.Metadata); err == nil {
			row.Metadata = datatypes.JSON(b)
		}
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		slog.Error("audit log write failed",
			"error", err,
			"site_id", entry.SiteID,
			"action", entry.EventType,
		)
	}
}

// NopAuditSink discards all entries.
type NopAuditSink struct{}

func (NopAuditSink) Record(context.Context, AuditEntry) {}
