// Package checksum computes content digests used as document versions.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether want is empty or equals the digest of data.
// Surrounding ETag quotes in want are ignored.
func Matches(data []byte, want string) bool {
	want = strings.Trim(want, `"`)
	return want == "" || want == Sum(data)
}
