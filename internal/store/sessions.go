package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/models"
	"github.com/inkstone-labs/reader-backend/internal/tenant"
	"gorm.io/gorm"
)

type GormSessionStore struct {
	db    *gorm.DB
	grace time.Duration
}

func NewGormSessionStore(db *gorm.DB, grace time.Duration) *GormSessionStore {
	return &GormSessionStore{db: db, grace: grace}
}

func (s *GormSessionStore) Create(ctx context.Context, session *models.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *GormSessionStore) FindByRefreshTokenHash(ctx context.Context, hash, siteID string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		Where("refresh_token_hash = ? AND expires_at >= ?", hash, now().Add(-s.grace)).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	return &session, nil
}

func (s *GormSessionStore) FindByID(ctx context.Context, id uuid.UUID, siteID string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	return &session, nil
}

func (s *GormSessionStore) FindByAccessTokenJTI(ctx context.Context, jti, siteID string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		Where("access_token_jti = ?", jti).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	return &session, nil
}

func (s *GormSessionStore) Update(ctx context.Context, session *models.Session) error {
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (s *GormSessionStore) Rotate(ctx context.Context, session *models.Session, rotation *models.SessionRotation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(session).Error; err != nil {
			return fmt.Errorf("failed to update rotated session: %w", err)
		}
		// Supersede any stale unconsumed record for the same hash before
		// inserting; the unique index enforces at most one per hash.
		if err := tx.Where("site_id = ? AND old_token_hash = ?", rotation.SiteID, rotation.OldTokenHash).
			Delete(&models.SessionRotation{}).Error; err != nil {
			return fmt.Errorf("failed to clear stale rotation record: %w", err)
		}
		if err := tx.Create(rotation).Error; err != nil {
			return fmt.Errorf("failed to record rotation: %w", err)
		}
		return nil
	})
}

func (s *GormSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *GormSessionStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID, siteID string, except *uuid.UUID) (int64, error) {
	query := s.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		Where("user_id = ?", userID)
	if except != nil {
		query = query.Where("id <> ?", *except)
	}

	result := query.Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormSessionStore) SweepExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", now()).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session sweep failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
