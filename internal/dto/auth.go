package dto

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the claims of a platform access token. The user id is the
// standard "sub" claim.
type AuthClaims struct {
	jwt.RegisteredClaims
}

func (c *AuthClaims) UserID() string {
	return c.Subject
}
