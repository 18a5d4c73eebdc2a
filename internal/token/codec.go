package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// AccessClaims is the short-lived bearer token payload. The typ discriminator
// is required; a refresh token never verifies as an access token.
type AccessClaims struct {
	SiteID    string `json:"site_id"`
	Tier      string `json:"tier"`
	Name      string `json:"name,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the long-lived rotation token payload. The family id is
// stable across rotations of one logical session; the version increments on
// every rotation.
type RefreshClaims struct {
	TokenFamily  uuid.UUID `json:"fam"`
	TokenVersion int       `json:"ver"`
	TokenType    string    `json:"typ"`
	jwt.RegisteredClaims
}

// Codec mints and verifies both token kinds with a shared HS256 secret.
// Pure crypto, no I/O.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken returns the signed token and its jti.
func (c *Codec) IssueAccessToken(userID uuid.UUID, siteID, tier, name string) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := AccessClaims{
		SiteID:    siteID,
		Tier:      tier,
		Name:      name,
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// IssuedRefreshToken carries everything the session store needs to persist
// alongside the signed token.
type IssuedRefreshToken struct {
	Token     string
	JTI       string
	Family    uuid.UUID
	Version   int
	ExpiresAt time.Time
}

// IssueRefreshToken continues the given family, or starts a new one when
// family is uuid.Nil (first issuance for a session).
func (c *Codec) IssueRefreshToken(userID, family uuid.UUID, version int) (*IssuedRefreshToken, error) {
	if family == uuid.Nil {
		family = uuid.New()
	}

	now := time.Now()
	jti := uuid.NewString()
	expiresAt := now.Add(c.refreshTTL)

	claims := RefreshClaims{
		TokenFamily:  family,
		TokenVersion: version,
		TokenType:    typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, err
	}

	return &IssuedRefreshToken{
		Token:     signed,
		JTI:       jti,
		Family:    family,
		Version:   version,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *Codec) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeAccess || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeRefresh || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) parse(raw string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
