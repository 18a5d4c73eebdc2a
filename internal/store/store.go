// Package store holds the persistence layer: session store, rotation ledger,
// and user directory, all site-scoped.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/models"
)

var (
	// ErrNotFound means no matching row (or the row is past its grace window).
	ErrNotFound = errors.New("record not found")
	// ErrRotationUsed means the rotation record for this hash was already
	// consumed. The caller must treat this as a token reuse signal.
	ErrRotationUsed = errors.New("rotation record already consumed")
)

// SessionStore persists one row per active session.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	// FindByRefreshTokenHash is site-scoped and applies the grace period: a
	// session past expiry is still returned while now <= expires_at + grace.
	FindByRefreshTokenHash(ctx context.Context, hash, siteID string) (*models.Session, error)
	FindByID(ctx context.Context, id uuid.UUID, siteID string) (*models.Session, error)
	FindByAccessTokenJTI(ctx context.Context, jti, siteID string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	// Rotate writes the rotated session state and the ledger record in one
	// transaction, so a crash cannot leave neither token working.
	Rotate(ctx context.Context, session *models.Session, rotation *models.SessionRotation) error
	// Delete is idempotent; a missing row is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID, siteID string, except *uuid.UUID) (int64, error)
	// SweepExpired hard-deletes sessions past expiry, ignoring the grace period.
	SweepExpired(ctx context.Context) (int64, error)
}

// RotationLedger maps a just-rotated refresh-token hash to its successor
// session for a short TTL.
type RotationLedger interface {
	Record(ctx context.Context, rotation *models.SessionRotation) error
	// Consume marks the matching unexpired record used and returns the current
	// state of the session it points to. Returns ErrRotationUsed if the record
	// was already consumed, ErrNotFound if no live record exists.
	Consume(ctx context.Context, oldTokenHash, siteID string) (*models.Session, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// UserDirectory is the external user collaborator: credential rows and tier
// lookup, site-scoped.
type UserDirectory interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email, siteID string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID, siteID string) (*models.User, error)
}

// now is indirected for grace-boundary tests.
var now = time.Now
