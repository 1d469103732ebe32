package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortHash returns the first 8 hex characters of the SHA-256 of s.
// It is used to disambiguate output files whose titles slugify to the same name.
func ShortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:8]
}
