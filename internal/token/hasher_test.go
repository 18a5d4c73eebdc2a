package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashRoundTrip(t *testing.T) {
	raw := "some-refresh-token"
	digest := Hash(raw)

	assert.Len(t, digest, 64)
	assert.True(t, VerifyHash(raw, digest))
	assert.Equal(t, digest, Hash(raw), "hash must be deterministic")
}

func TestVerifyHashRejectsMutatedToken(t *testing.T) {
	digest := Hash("some-refresh-token")

	assert.False(t, VerifyHash("some-refresh-tokeN", digest))
	assert.False(t, VerifyHash("", digest))
	assert.False(t, VerifyHash("some-refresh-token", digest[:63]+"x"))
}
