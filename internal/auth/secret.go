package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/hezo-be/webinar-backend/pkg/utils"
)

// Secret verifies the shared admin secret. The configured value may be plain text or a bcrypt hash.
type Secret struct {
	value  string
	hashed bool
}

// NewSecret wraps the configured admin secret.
func NewSecret(value string) *Secret {
	return &Secret{value: value, hashed: utils.IsBcryptHash(value)}
}

// Configured reports whether a non-empty secret was provided. An unconfigured secret rejects everything.
func (s *Secret) Configured() bool {
	return s != nil && s.value != ""
}

// Verify reports whether candidate matches the secret.
func (s *Secret) Verify(candidate string) bool {
	if !s.Configured() || candidate == "" {
		return false
	}
	if s.hashed {
		return utils.CheckPassword(candidate, s.value)
	}
	// Hash both sides so the comparison time does not depend on length.
	a := sha256.Sum256([]byte(candidate))
	b := sha256.Sum256([]byte(s.value))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
