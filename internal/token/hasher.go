package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of a raw token. Raw refresh tokens are
// never stored; the digest allows O(1) lookup without exposing the credential
// if the store leaks.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// VerifyHash re-hashes and compares in constant time.
func VerifyHash(raw, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(raw)), []byte(digest)) == 1
}
