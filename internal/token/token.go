// Package token generates the bearer secrets embedded in invitation links
// and derives the digests under which they are stored. Raw tokens leave the
// process exactly once, inside the outbound invitation email; only the
// digest is ever persisted.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/pkg/errors"
)

// rawSize is the entropy of a raw token in bytes (256 bits).
const rawSize = 32

// Generate creates a cryptographically secure random token encoded as a
// base64url string without padding, safe to embed in a query parameter.
func Generate() (string, error) {
	buf := make([]byte, rawSize)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random token bytes")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the lowercase hex SHA-256 digest of a raw token. It is the
// only representation of the token that may be stored or logged.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
