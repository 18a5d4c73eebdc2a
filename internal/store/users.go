package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/models"
	"github.com/inkstone-labs/reader-backend/internal/tenant"
	"gorm.io/gorm"
)

type GormUserDirectory struct {
	db *gorm.DB
}

func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

func (d *GormUserDirectory) Create(ctx context.Context, user *models.User) error {
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (d *GormUserDirectory) FindByEmail(ctx context.Context, email, siteID string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return &user, nil
}

func (d *GormUserDirectory) FindByID(ctx context.Context, id uuid.UUID, siteID string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Scopes(tenant.ForSite(siteID)).
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return &user, nil
}
