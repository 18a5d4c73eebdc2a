package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testCodec() *Codec {
	return NewCodec(testSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := testCodec()
	userID := uuid.New()

	issuedAt := time.Now()
	raw, jti, err := c.IssueAccessToken(userID, "inkstone", "premium", "Ada")
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotEmpty(t, jti)

	claims, err := c.VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "inkstone", claims.SiteID)
	assert.Equal(t, "premium", claims.Tier)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, jti, claims.ID)

	// expiry = issued-at + configured access lifetime
	assert.WithinDuration(t, issuedAt.Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	c := testCodec()
	userID := uuid.New()

	issued, err := c.IssueRefreshToken(userID, uuid.Nil, 1)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, issued.Family, "nil family should start a new one")
	assert.Equal(t, 1, issued.Version)

	claims, err := c.VerifyRefreshToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, issued.Family, claims.TokenFamily)
	assert.Equal(t, 1, claims.TokenVersion)
	assert.Equal(t, issued.JTI, claims.ID)
}

func TestRefreshTokenContinuesFamily(t *testing.T) {
	c := testCodec()
	userID := uuid.New()

	first, err := c.IssueRefreshToken(userID, uuid.Nil, 1)
	require.NoError(t, err)

	second, err := c.IssueRefreshToken(userID, first.Family, 2)
	require.NoError(t, err)

	assert.Equal(t, first.Family, second.Family)
	assert.Equal(t, 2, second.Version)
	assert.NotEqual(t, first.JTI, second.JTI)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	c := testCodec()
	userID := uuid.New()

	access, _, err := c.IssueAccessToken(userID, "inkstone", "free", "")
	require.NoError(t, err)
	refresh, err := c.IssueRefreshToken(userID, uuid.Nil, 1)
	require.NoError(t, err)

	_, err = c.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.VerifyAccessToken(refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	c := testCodec()

	raw, _, err := c.IssueAccessToken(uuid.New(), "inkstone", "free", "")
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = c.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, _, err := testCodec().IssueAccessToken(uuid.New(), "inkstone", "free", "")
	require.NoError(t, err)

	other := NewCodec("another-secret-another-secret-xx", 15*time.Minute, time.Hour)
	_, err = other.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	expired := NewCodec(testSecret, -time.Minute, -time.Minute)

	raw, _, err := expired.IssueAccessToken(uuid.New(), "inkstone", "free", "")
	require.NoError(t, err)
	_, err = expired.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issued, err := expired.IssueRefreshToken(uuid.New(), uuid.Nil, 1)
	require.NoError(t, err)
	_, err = expired.VerifyRefreshToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
