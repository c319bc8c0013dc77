// Package utils provides shared helpers for all modules: identifier
// generation and content hashing.
package utils

import (
	"github.com/google/uuid"
)

// GenerateAPIKey generates the opaque, globally unique external identifier
// assigned to every entity at creation. API keys are UUID v4 strings and
// are the only identifiers ever exposed outside the storage boundary.
func GenerateAPIKey() string {
	return uuid.New().String()
}
