package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/config"
	"github.com/inkstone-labs/reader-backend/internal/device"
	"github.com/inkstone-labs/reader-backend/internal/models"
	"github.com/inkstone-labs/reader-backend/internal/store"
	"github.com/inkstone-labs/reader-backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDeactivated  = errors.New("account is deactivated")
	ErrNoRefreshToken      = errors.New("no refresh token supplied")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrSessionExpired      = errors.New("session not found or expired")
	ErrSessionInvalid      = errors.New("session does not belong to this site")
	ErrUserNotFound        = errors.New("user not found")
	ErrTokenReuseDetected  = errors.New("refresh token reuse detected")
	ErrPersistence         = errors.New("persistence failure")
)

// RequestMeta carries per-request context that ends up on sessions and audit
// rows.
type RequestMeta struct {
	SiteID    string
	IPAddress string
	UserAgent string
}

// AuthResult is what a successful login/signup/refresh hands back to the
// transport layer. RefreshToken is empty when the client's stored refresh
// token stays in force (the reused multi-tab path).
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Rotated      bool
	User         *models.User
	Session      *models.Session
}

// AuthService owns the session lifecycle: login, refresh-with-rotation,
// logout, and the reuse/grace decisions in between.
type AuthService struct {
	sessions    store.SessionStore
	rotations   store.RotationLedger
	users       store.UserDirectory
	codec       *token.Codec
	audit       AuditSink
	refreshTTL  time.Duration
	rotationTTL time.Duration
}

func NewAuthService(
	sessions store.SessionStore,
	rotations store.RotationLedger,
	users store.UserDirectory,
	codec *token.Codec,
	audit AuditSink,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		sessions:    sessions,
		rotations:   rotations,
		users:       users,
		codec:       codec,
		audit:       audit,
		refreshTTL:  cfg.RefreshTokenTTL.Std(),
		rotationTTL: cfg.RotationLedgerTTL.Std(),
	}
}

func (s *AuthService) Signup(ctx context.Context, meta RequestMeta, email, password, displayName string) (*AuthResult, error) {
	if _, err := s.users.FindByEmail(ctx, email, meta.SiteID); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:          uuid.New(),
		SiteID:      meta.SiteID,
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
		Tier:        models.TierFree,
		IsActive:    true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	result, err := s.createSession(ctx, meta, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		SiteID:    meta.SiteID,
		UserID:    &user.ID,
		EventType: AuditSignup,
		Resource:  "session:" + result.Session.ID.String(),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, meta RequestMeta, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email, meta.SiteID)
	if err != nil {
		// Deliberately indistinguishable from a wrong password to prevent
		// account enumeration.
		s.auditLoginFailure(ctx, meta, email, "unknown_email")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.auditLoginFailure(ctx, meta, email, "wrong_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.auditLoginFailure(ctx, meta, email, "deactivated")
		return nil, ErrAccountDeactivated
	}

	result, err := s.createSession(ctx, meta, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		SiteID:    meta.SiteID,
		UserID:    &user.ID,
		EventType: AuditLoginSuccess,
		Resource:  "session:" + result.Session.ID.String(),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return result, nil
}

func (s *AuthService) auditLoginFailure(ctx context.Context, meta RequestMeta, email, reason string) {
	s.audit.Record(ctx, AuditEntry{
		SiteID:    meta.SiteID,
		EventType: AuditLoginFailed,
		Resource:  "user:" + email,
		Metadata:  map[string]interface{}{"reason": reason},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
}

// createSession mints a token pair (fresh family, version 1) and persists the
// session row. Tokens are only handed back once the row exists; tokens without
// a session record would be unusable.
func (s *AuthService) createSession(ctx context.Context, meta RequestMeta, user *models.User) (*AuthResult, error) {
	accessToken, jti, err := s.codec.IssueAccessToken(user.ID, meta.SiteID, user.Tier, user.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.codec.IssueRefreshToken(user.ID, uuid.Nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	info := device.Parse(meta.UserAgent)
	session := &models.Session{
		ID:               uuid.New(),
		SiteID:           meta.SiteID,
		UserID:           user.ID,
		UserEmail:        user.Email,
		UserTier:         user.Tier,
		UserName:         user.DisplayName,
		RefreshTokenHash: token.Hash(refresh.Token),
		AccessTokenJTI:   jti,
		TokenFamily:      refresh.Family,
		TokenVersion:     refresh.Version,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		DeviceBrowser:    string(info.Browser),
		DeviceOS:         string(info.OS),
		DeviceForm:       string(info.Form),
		ExpiresAt:        refresh.ExpiresAt,
		LastUsedAt:       time.Now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		Rotated:      true,
		User:         user,
		Session:      session,
	}, nil
}

// Refresh implements the rotation protocol. Two tabs racing with the same
// stale token are expected: the loser of the race lands on the rotation
// ledger and is upgraded to the winner's session instead of being rejected.
// A tab that raced the ledger record itself may still see ErrSessionExpired
// and must retry with its freshly stored tokens.
func (s *AuthService) Refresh(ctx context.Context, meta RequestMeta, rawRefresh string) (*AuthResult, error) {
	if rawRefresh == "" {
		return nil, ErrNoRefreshToken
	}

	claims, err := s.codec.VerifyRefreshToken(rawRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	hash := token.Hash(rawRefresh)

	rotated, err := s.rotations.Consume(ctx, hash, meta.SiteID)
	switch {
	case err == nil:
		return s.serveRotatedSession(ctx, meta, rotated)
	case errors.Is(err, store.ErrRotationUsed):
		s.audit.Record(ctx, AuditEntry{
			SiteID:    meta.SiteID,
			EventType: AuditReuseDetected,
			Metadata:  map[string]interface{}{"jti": claims.ID, "family": claims.TokenFamily.String()},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrTokenReuseDetected
	case !errors.Is(err, store.ErrNotFound):
		slog.Warn("rotation ledger lookup failed, falling back to session lookup", "error", err, "site_id", meta.SiteID)
	}

	session, err := s.sessions.FindByRefreshTokenHash(ctx, hash, meta.SiteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Defense in depth: the lookup was site-scoped, re-verify anyway, and pin
	// the token's subject to the session owner.
	if session.SiteID != meta.SiteID || session.UserID.String() != claims.Subject {
		return nil, ErrSessionInvalid
	}

	user, err := s.users.FindByID(ctx, session.UserID, meta.SiteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if user.SiteID != meta.SiteID {
		return nil, ErrSessionInvalid
	}

	return s.rotate(ctx, meta, session, user, rawRefresh, claims)
}

// serveRotatedSession handles the legitimate multi-tab race: the presented
// token was already rotated by another tab, so mint only a fresh access token
// bound to the existing session. The client's stored refresh token (written by
// the winning tab) stays in force.
func (s *AuthService) serveRotatedSession(ctx context.Context, meta RequestMeta, session *models.Session) (*AuthResult, error) {
	accessToken, jti, err := s.codec.IssueAccessToken(session.UserID, meta.SiteID, session.UserTier, session.UserName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	session.AccessTokenJTI = jti
	session.LastUsedAt = time.Now()
	if err := s.sessions.Update(ctx, session); err != nil {
		slog.Warn("failed to update session on reused refresh", "error", err, "session_id", session.ID)
	}

	s.audit.Record(ctx, AuditEntry{
		SiteID:    meta.SiteID,
		UserID:    &session.UserID,
		EventType: AuditRefreshReused,
		Resource:  "session:" + session.ID.String(),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return &AuthResult{
		AccessToken: accessToken,
		Rotated:     false,
		Session:     session,
	}, nil
}

func (s *AuthService) rotate(
	ctx context.Context,
	meta RequestMeta,
	session *models.Session,
	user *models.User,
	rawRefresh string,
	claims *token.RefreshClaims,
) (*AuthResult, error) {
	accessToken, jti, err := s.codec.IssueAccessToken(user.ID, meta.SiteID, user.Tier, user.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.codec.IssueRefreshToken(user.ID, session.TokenFamily, session.TokenVersion+1)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	prev := *session
	oldHash := session.RefreshTokenHash
	info := device.Parse(meta.UserAgent)

	// Same row id across the whole family lifetime; only token state and
	// snapshot fields move.
	session.UserEmail = user.Email
	session.UserTier = user.Tier
	session.UserName = user.DisplayName
	session.RefreshTokenHash = token.Hash(refresh.Token)
	session.AccessTokenJTI = jti
	session.TokenVersion = refresh.Version
	session.IPAddress = meta.IPAddress
	session.UserAgent = meta.UserAgent
	session.DeviceBrowser = string(info.Browser)
	session.DeviceOS = string(info.OS)
	session.DeviceForm = string(info.Form)
	session.ExpiresAt = refresh.ExpiresAt
	session.LastUsedAt = time.Now()

	rotation := &models.SessionRotation{
		ID:           uuid.New(),
		SiteID:       meta.SiteID,
		UserID:       user.ID,
		OldJTI:       claims.ID,
		OldTokenHash: oldHash,
		NewSessionID: session.ID,
		TokenFamily:  session.TokenFamily,
		ExpiresAt:    time.Now().Add(s.rotationTTL),
	}

	if err := s.sessions.Rotate(ctx, session, rotation); err != nil {
		// Rotation failure is non-fatal to the ongoing session: extend the
		// existing row and keep serving the old refresh token rather than
		// leaving the client with no usable credential.
		slog.Error("session rotation failed, extending existing session",
			"error", err, "session_id", session.ID, "site_id", meta.SiteID)

		*session = prev
		session.AccessTokenJTI = jti
		session.ExpiresAt = time.Now().Add(s.refreshTTL)
		session.LastUsedAt = time.Now()
		if err := s.sessions.Update(ctx, session); err != nil {
			slog.Error("session extension failed after rotation failure", "error", err, "session_id", session.ID)
		}

		return &AuthResult{
			AccessToken:  accessToken,
			RefreshToken: rawRefresh,
			Rotated:      false,
			User:         user,
			Session:      session,
		}, nil
	}

	s.audit.Record(ctx, AuditEntry{
		SiteID:    meta.SiteID,
		UserID:    &user.ID,
		EventType: AuditRefreshed,
		Resource:  "session:" + session.ID.String(),
		Metadata:  map[string]interface{}{"token_version": session.TokenVersion},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		Rotated:      true,
		User:         user,
		Session:      session,
	}, nil
}

// Logout resolves the session by refresh token, falling back to the access
// token's jti when the refresh cookie is absent, and deletes it. Always
// succeeds: failing to delete a row is better than failing to log out, and
// the transport clears cookies regardless.
func (s *AuthService) Logout(ctx context.Context, meta RequestMeta, rawRefresh, rawAccess string) {
	var session *models.Session

	if rawRefresh != "" {
		found, err := s.sessions.FindByRefreshTokenHash(ctx, token.Hash(rawRefresh), meta.SiteID)
		if err == nil {
			session = found
		}
	}

	if session == nil && rawAccess != "" {
		if claims, err := s.codec.VerifyAccessToken(rawAccess); err == nil {
			if found, err := s.sessions.FindByAccessTokenJTI(ctx, claims.ID, meta.SiteID); err == nil {
				session = found
			}
		}
	}

	if session == nil {
		return
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		slog.Warn("session delete failed on logout", "error", err, "session_id", session.ID)
	}

	s.audit.Record(ctx, AuditEntry{
		SiteID:    meta.SiteID,
		UserID:    &session.UserID,
		EventType: AuditLogout,
		Resource:  "session:" + session.ID.String(),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
}

// LogoutAll revokes every session of a user on this site ("log out
// everywhere"), optionally keeping one.
func (s *AuthService) LogoutAll(ctx context.Context, meta RequestMeta, userID uuid.UUID, except *uuid.UUID) (int64, error) {
	count, err := s.sessions.DeleteAllForUser(ctx, userID, meta.SiteID, except)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.audit.Record(ctx, AuditEntry{
		SiteID:    meta.SiteID,
		UserID:    &userID,
		EventType: AuditLogoutAll,
		Metadata:  map[string]interface{}{"revoked": count},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return count, nil
}

// ResolveSession maps a presented refresh token to its live session row,
// used when "log out everywhere" should spare the current device.
func (s *AuthService) ResolveSession(ctx context.Context, meta RequestMeta, rawRefresh string) (*models.Session, error) {
	if rawRefresh == "" {
		return nil, ErrNoRefreshToken
	}
	session, err := s.sessions.FindByRefreshTokenHash(ctx, token.Hash(rawRefresh), meta.SiteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return session, nil
}

// CurrentUser loads the authenticated user's directory row.
func (s *AuthService) CurrentUser(ctx context.Context, siteID string, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID, siteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	return user, nil
}
