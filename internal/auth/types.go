package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Tier   string `json:"tier"`
	jwt.RegisteredClaims
}

// identifies the caller of a request. Exactly one of UserID or SessionKey
// is set: authenticated callers carry a user id, anonymous callers carry
// a session key.
type Identity struct {
	UserID     string
	SessionKey string
}

// reports whether the identity belongs to an authenticated user
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}
