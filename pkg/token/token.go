// Package token mints and classifies the opaque API keys handed to clients.
// User keys are random and prefixed "U-"; the single admin key is configured
// out of band and prefixed "A-".
package token

import (
	"strings"

	"github.com/google/uuid"
)

const (
	UserPrefix  = "U-"
	AdminPrefix = "A-"
)

// NewUserKey returns a freshly minted user API key. Uniqueness comes from the
// embedded UUID; the database still enforces it with a unique constraint.
func NewUserKey() string {
	return UserPrefix + uuid.NewString()
}

func IsUserKey(key string) bool {
	return strings.HasPrefix(key, UserPrefix)
}

func IsAdminKey(key string) bool {
	return strings.HasPrefix(key, AdminPrefix)
}
