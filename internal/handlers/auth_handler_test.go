package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/config"
	"github.com/inkstone-labs/reader-backend/internal/dto"
	"github.com/inkstone-labs/reader-backend/internal/middleware"
	"github.com/inkstone-labs/reader-backend/internal/models"
	"github.com/inkstone-labs/reader-backend/internal/services"
	"github.com/inkstone-labs/reader-backend/internal/store"
	"github.com/inkstone-labs/reader-backend/internal/store/storemock"
	"github.com/inkstone-labs/reader-backend/internal/tenant"
	"github.com/inkstone-labs/reader-backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSite = "inkstone"

type handlerFixture struct {
	app       *fiber.App
	sessions  *storemock.SessionStore
	rotations *storemock.RotationLedger
	users     *storemock.UserDirectory
	codec     *token.Codec
}

func newHandlerFixture() *handlerFixture {
	cfg := &config.Config{
		JWTSecret:         "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:    config.Duration(15 * time.Minute),
		RefreshTokenTTL:   config.Duration(7 * 24 * time.Hour),
		SessionGrace:      config.Duration(5 * time.Minute),
		RotationLedgerTTL: config.Duration(5 * time.Minute),
		AppEnv:            "test",
	}

	f := &handlerFixture{
		sessions:  &storemock.SessionStore{},
		rotations: &storemock.RotationLedger{},
		users:     &storemock.UserDirectory{},
		codec:     token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL.Std(), cfg.RefreshTokenTTL.Std()),
	}

	authService := services.NewAuthService(f.sessions, f.rotations, f.users, f.codec, services.NopAuditSink{}, cfg)
	authHandler := NewAuthHandler(authService, cfg)

	registry := tenant.NewRegistry()
	registry.Register(&tenant.SiteConfig{SiteID: testSite, SiteName: "Inkstone"})

	app := fiber.New()
	app.Use(middleware.SiteMiddleware(registry))

	auth := app.Group("/api/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	f.app = app
	return f
}

func (f *handlerFixture) request(t *testing.T, method, path string, body interface{}, cookies map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Site-ID", testSite)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func cookieValue(resp *http.Response, name string) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSignupSetsCookiesAndFreeTier(t *testing.T) {
	f := newHandlerFixture()

	f.users.On("FindByEmail", mock.Anything, "a@x.com", testSite).Return(nil, store.ErrNotFound)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	f.sessions.On("Create", mock.Anything, mock.AnythingOfType("*models.Session")).Return(nil)

	resp := f.request(t, "POST", "/api/auth/signup", dto.SignupRequest{
		Email:    "a@x.com",
		Password: "Aa1!aaaa",
	}, nil)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	access, ok := cookieValue(resp, "access_token")
	require.True(t, ok, "access_token cookie must be set")
	require.NotEmpty(t, access)
	refresh, ok := cookieValue(resp, "refresh_token")
	require.True(t, ok, "refresh_token cookie must be set")
	require.NotEmpty(t, refresh)

	var body dto.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.TierFree, body.User.Tier)
	assert.Equal(t, "a@x.com", body.User.Email)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	f := newHandlerFixture()

	resp := f.request(t, "POST", "/api/auth/signup", dto.SignupRequest{
		Email:    "a@x.com",
		Password: "short",
	}, nil)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginWrongPasswordSetsNoCookies(t *testing.T) {
	f := newHandlerFixture()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	user := &models.User{
		ID:       uuid.New(),
		SiteID:   testSite,
		Email:    "a@x.com",
		Password: string(hash),
		Tier:     models.TierFree,
		IsActive: true,
	}
	f.users.On("FindByEmail", mock.Anything, "a@x.com", testSite).Return(user, nil)

	resp := f.request(t, "POST", "/api/auth/login", dto.LoginRequest{
		Email:    "a@x.com",
		Password: "wrong-password",
	}, nil)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Code)
	assert.Empty(t, resp.Cookies(), "no cookies on failed login")
}

func TestRefreshRotatesAndSetsNewCookies(t *testing.T) {
	f := newHandlerFixture()

	userID := uuid.New()
	family := uuid.New()
	issued, err := f.codec.IssueRefreshToken(userID, family, 1)
	require.NoError(t, err)

	user := &models.User{
		ID:       userID,
		SiteID:   testSite,
		Email:    "a@x.com",
		Tier:     models.TierPremium,
		IsActive: true,
	}
	// Expired four minutes ago but still inside the five-minute grace window;
	// the store returns it, so rotation proceeds.
	session := &models.Session{
		ID:               uuid.New(),
		SiteID:           testSite,
		UserID:           userID,
		UserEmail:        user.Email,
		UserTier:         user.Tier,
		RefreshTokenHash: token.Hash(issued.Token),
		TokenFamily:      family,
		TokenVersion:     1,
		ExpiresAt:        time.Now().Add(-4 * time.Minute),
	}

	f.rotations.On("Consume", mock.Anything, session.RefreshTokenHash, testSite).Return(nil, store.ErrNotFound)
	f.sessions.On("FindByRefreshTokenHash", mock.Anything, session.RefreshTokenHash, testSite).Return(session, nil)
	f.users.On("FindByID", mock.Anything, userID, testSite).Return(user, nil)
	f.sessions.On("Rotate", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp := f.request(t, "POST", "/api/auth/refresh", nil, map[string]string{
		"refresh_token": issued.Token,
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	newRefresh, ok := cookieValue(resp, "refresh_token")
	require.True(t, ok)
	require.NotEqual(t, issued.Token, newRefresh)

	claims, err := f.codec.VerifyRefreshToken(newRefresh)
	require.NoError(t, err)
	assert.Equal(t, 2, claims.TokenVersion, "token_version incremented by 1")
	assert.Equal(t, family, claims.TokenFamily)

	var body dto.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Rotated)
}

func TestRefreshWithDeletedSession(t *testing.T) {
	f := newHandlerFixture()

	issued, err := f.codec.IssueRefreshToken(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	hash := token.Hash(issued.Token)

	// Logged out elsewhere: no rotation record, no session row.
	f.rotations.On("Consume", mock.Anything, hash, testSite).Return(nil, store.ErrNotFound)
	f.sessions.On("FindByRefreshTokenHash", mock.Anything, hash, testSite).Return(nil, store.ErrNotFound)

	resp := f.request(t, "POST", "/api/auth/refresh", nil, map[string]string{
		"refresh_token": issued.Token,
	})

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_EXPIRED", decodeError(t, resp).Code)
}

func TestRefreshReuseDetectedCode(t *testing.T) {
	f := newHandlerFixture()

	issued, err := f.codec.IssueRefreshToken(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)

	f.rotations.On("Consume", mock.Anything, token.Hash(issued.Token), testSite).Return(nil, store.ErrRotationUsed)

	resp := f.request(t, "POST", "/api/auth/refresh", nil, map[string]string{
		"refresh_token": issued.Token,
	})

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_REUSE_DETECTED", decodeError(t, resp).Code,
		"replay must be flagged distinctly from SESSION_EXPIRED")
}

func TestRefreshWithoutToken(t *testing.T) {
	f := newHandlerFixture()

	resp := f.request(t, "POST", "/api/auth/refresh", nil, nil)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "NO_REFRESH_TOKEN", decodeError(t, resp).Code)
}

func TestLogoutWithoutCookiesStillClears(t *testing.T) {
	f := newHandlerFixture()

	resp := f.request(t, "POST", "/api/auth/logout", nil, nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	cleared := 0
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" || c.Name == "refresh_token" {
			assert.Empty(t, c.Value)
			assert.True(t, c.MaxAge < 0 || c.Expires.Before(time.Now()))
			cleared++
		}
	}
	assert.Equal(t, 2, cleared, "both cookies cleared even with no session")
}

func TestUnknownSiteRejected(t *testing.T) {
	f := newHandlerFixture()

	req, err := http.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Site-ID", "not-a-site")

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
