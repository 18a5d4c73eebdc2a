// Package storemock provides testify mocks for the store interfaces.
package storemock

import (
	"context"

	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) FindByRefreshTokenHash(ctx context.Context, hash, siteID string) (*models.Session, error) {
	args := m.Called(ctx, hash, siteID)
	if s, ok := args.Get(0).(*models.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionStore) FindByID(ctx context.Context, id uuid.UUID, siteID string) (*models.Session, error) {
	args := m.Called(ctx, id, siteID)
	if s, ok := args.Get(0).(*models.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionStore) FindByAccessTokenJTI(ctx context.Context, jti, siteID string) (*models.Session, error) {
	args := m.Called(ctx, jti, siteID)
	if s, ok := args.Get(0).(*models.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionStore) Update(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) Rotate(ctx context.Context, session *models.Session, rotation *models.SessionRotation) error {
	args := m.Called(ctx, session, rotation)
	return args.Error(0)
}

func (m *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SessionStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID, siteID string, except *uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, siteID, except)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SessionStore) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type RotationLedger struct {
	mock.Mock
}

func (m *RotationLedger) Record(ctx context.Context, rotation *models.SessionRotation) error {
	args := m.Called(ctx, rotation)
	return args.Error(0)
}

func (m *RotationLedger) Consume(ctx context.Context, oldTokenHash, siteID string) (*models.Session, error) {
	args := m.Called(ctx, oldTokenHash, siteID)
	if s, ok := args.Get(0).(*models.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RotationLedger) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type UserDirectory struct {
	mock.Mock
}

func (m *UserDirectory) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserDirectory) FindByEmail(ctx context.Context, email, siteID string) (*models.User, error) {
	args := m.Called(ctx, email, siteID)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserDirectory) FindByID(ctx context.Context, id uuid.UUID, siteID string) (*models.User, error) {
	args := m.Called(ctx, id, siteID)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
