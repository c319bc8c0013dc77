package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashBytes returns the SHA256 hex digest of the given content. Song rows
// store this as their fileHash, the principal means of detecting duplicate
// or unchanged files across rescans.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TruncateHash returns a truncated version of the hash for logging only.
func TruncateHash(hash string, length int) string {
	if len(hash) <= length {
		return hash
	}
	return hash[:length] + "..."
}
