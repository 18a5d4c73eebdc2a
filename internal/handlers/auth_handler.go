package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkstone-labs/reader-backend/internal/config"
	"github.com/inkstone-labs/reader-backend/internal/dto"
	"github.com/inkstone-labs/reader-backend/internal/services"
	"github.com/inkstone-labs/reader-backend/internal/tenant"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
	validate    *validator.Validate
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
		validate:    validator.New(),
	}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Email required and password must be at least 8 characters")
	}

	result, err := h.authService.Signup(c.Context(), h.meta(c), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return h.authError(c, err)
	}

	h.setAuthCookies(c, result)
	return c.Status(fiber.StatusCreated).JSON(authResponse(result))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Email and password are required")
	}

	result, err := h.authService.Login(c.Context(), h.meta(c), req.Email, req.Password)
	if err != nil {
		return h.authError(c, err)
	}

	h.setAuthCookies(c, result)
	return c.JSON(authResponse(result))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	result, err := h.authService.Refresh(c.Context(), h.meta(c), h.refreshTokenFrom(c))
	if err != nil {
		return h.authError(c, err)
	}

	h.setAuthCookies(c, result)
	return c.JSON(authResponse(result))
}

// Logout is idempotent: cookies are cleared and 200 returned whether or not a
// session was found or the delete succeeded.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	_ = c.BodyParser(&req) // body is optional

	rawRefresh := h.refreshTokenFrom(c)
	if rawRefresh == "" {
		rawRefresh = req.RefreshToken
	}
	rawAccess := c.Cookies(accessCookie)

	h.authService.Logout(c.Context(), h.meta(c), rawRefresh, rawAccess)

	h.clearAuthCookies(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c, "UNAUTHORIZED", "Unauthorized")
	}

	var req dto.LogoutAllRequest
	_ = c.BodyParser(&req)

	var except *uuid.UUID
	if req.KeepCurrent {
		if session, lookupErr := h.authService.ResolveSession(c.Context(), h.meta(c), h.refreshTokenFrom(c)); lookupErr == nil {
			except = &session.ID
		}
	}

	count, err := h.authService.LogoutAll(c.Context(), h.meta(c), userID, except)
	if err != nil {
		return h.authError(c, err)
	}

	if !req.KeepCurrent {
		h.clearAuthCookies(c)
	}
	return c.JSON(dto.LogoutAllResponse{Revoked: count})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c, "UNAUTHORIZED", "Unauthorized")
	}

	user, err := h.authService.CurrentUser(c.Context(), tenant.GetSiteID(c), userID)
	if err != nil {
		return h.authError(c, err)
	}

	return c.JSON(dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Tier:        user.Tier,
	})
}

func (h *AuthHandler) meta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		SiteID:    tenant.GetSiteID(c),
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

func (h *AuthHandler) refreshTokenFrom(c *fiber.Ctx) string {
	if cookie := c.Cookies(refreshCookie); cookie != "" {
		return cookie
	}
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, result *services.AuthResult) {
	c.Cookie(&fiber.Cookie{
		Name:     accessCookie,
		Value:    result.AccessToken,
		Path:     "/",
		MaxAge:   h.cfg.AccessTokenTTL.Seconds(),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	// On the reused multi-tab path there is no new refresh token; the one the
	// client already stores stays valid.
	if result.RefreshToken != "" {
		c.Cookie(&fiber.Cookie{
			Name:     refreshCookie,
			Value:    result.RefreshToken,
			Path:     "/",
			MaxAge:   h.cfg.RefreshTokenTTL.Seconds(),
			HTTPOnly: true,
			Secure:   h.cfg.IsProduction(),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{accessCookie, refreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  expired,
			HTTPOnly: true,
			Secure:   h.cfg.IsProduction(),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}

func (h *AuthHandler) authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return unauthorized(c, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, services.ErrAccountDeactivated):
		return errorJSON(c, fiber.StatusForbidden, "ACCOUNT_DEACTIVATED", "Account is deactivated")
	case errors.Is(err, services.ErrNoRefreshToken):
		return unauthorized(c, "NO_REFRESH_TOKEN", "No refresh token supplied")
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return unauthorized(c, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	case errors.Is(err, services.ErrSessionExpired):
		return unauthorized(c, "SESSION_EXPIRED", "Session expired, please log in again")
	case errors.Is(err, services.ErrSessionInvalid):
		return unauthorized(c, "SESSION_INVALID", "Session is not valid for this site")
	case errors.Is(err, services.ErrUserNotFound):
		return unauthorized(c, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, services.ErrTokenReuseDetected):
		return unauthorized(c, "TOKEN_REUSE_DETECTED", "Refresh token reuse detected")
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	default:
		return errorJSON(c, fiber.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}

func authResponse(result *services.AuthResult) dto.AuthResponse {
	resp := dto.AuthResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Rotated:      result.Rotated,
	}
	if result.User != nil {
		resp.User = dto.UserResponse{
			ID:          result.User.ID,
			Email:       result.User.Email,
			DisplayName: result.User.DisplayName,
			Tier:        result.User.Tier,
		}
	} else if result.Session != nil {
		resp.User = dto.UserResponse{
			ID:          result.Session.UserID,
			Email:       result.Session.UserEmail,
			DisplayName: result.Session.UserName,
			Tier:        result.Session.UserTier,
		}
	}
	return resp
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return errorJSON(c, fiber.StatusUnauthorized, code, message)
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	})
}
