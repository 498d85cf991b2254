package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims represents the JWT claims issued by the identity provider.
type AuthClaims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	AppMetadata          map[string]interface{} `json:"app_metadata"`
	SessionID            string                 `json:"session_id"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AuthClaims) GetUserID() string {
	return c.Subject
}

// IsAdmin reports whether the token carries the admin flag in app metadata.
// Mutating CMS routes are gated on this.
func (c *AuthClaims) IsAdmin() bool {
	if c.AppMetadata == nil {
		return false
	}
	admin, ok := c.AppMetadata["admin"].(bool)
	return ok && admin
}
