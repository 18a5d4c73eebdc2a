package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkstone-labs/reader-backend/internal/models"
	"github.com/inkstone-labs/reader-backend/internal/tenant"
	"gorm.io/gorm"
)

type GormRotationLedger struct {
	db *gorm.DB
}

func NewGormRotationLedger(db *gorm.DB) *GormRotationLedger {
	return &GormRotationLedger{db: db}
}

func (l *GormRotationLedger) Record(ctx context.Context, rotation *models.SessionRotation) error {
	if err := l.db.WithContext(ctx).Create(rotation).Error; err != nil {
		return fmt.Errorf("failed to record rotation: %w", err)
	}
	return nil
}

func (l *GormRotationLedger) Consume(ctx context.Context, oldTokenHash, siteID string) (*models.Session, error) {
	var rotation models.SessionRotation
	err := l.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		Where("old_token_hash = ? AND expires_at > ?", oldTokenHash, now()).
		First(&rotation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rotation lookup failed: %w", err)
	}

	if rotation.Used {
		return nil, ErrRotationUsed
	}

	// Single idempotent flip. The WHERE used = false guard makes concurrent
	// consumers race safely: exactly one wins, the rest see ErrRotationUsed.
	usedAt := now()
	result := l.db.WithContext(ctx).
		Model(&models.SessionRotation{}).
		Where("id = ? AND used = false", rotation.ID).
		Updates(map[string]interface{}{"used": true, "used_at": usedAt})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to consume rotation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRotationUsed
	}

	// Load the session's current state, not the record's stale copy.
	var session models.Session
	err = l.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		First(&session, "id = ?", rotation.NewSessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rotated session lookup failed: %w", err)
	}
	return &session, nil
}

func (l *GormRotationLedger) SweepExpired(ctx context.Context) (int64, error) {
	result := l.db.WithContext(ctx).
		Where("expires_at < ?", now()).
		Delete(&models.SessionRotation{})
	if result.Error != nil {
		return 0, fmt.Errorf("rotation sweep failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
