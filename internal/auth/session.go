package auth

import "github.com/google/uuid"

// Guest sessions are identified by a UUID v4 minted from a cryptographically
// secure source. Tokens arriving from clients are validated against the v4
// format before they are used anywhere; malformed tokens are rejected, never
// coerced.

// NewSessionToken returns a fresh guest session token.
func NewSessionToken() string {
	return uuid.NewString()
}

// ValidSessionToken reports whether s is a well-formed v4 session token.
func ValidSessionToken(s string) bool {
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}
