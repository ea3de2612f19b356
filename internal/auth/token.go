package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// decodeToken extracts the username and admin claims from a bearer token
// without verifying its signature. Verification is the server's job; the
// decoded claims drive display only and must never be treated as an
// authorization boundary.
func decodeToken(token string) (username string, isAdmin bool, err error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", false, fmt.Errorf("decode token: %w", err)
	}
	return claims.Username, claims.IsAdmin, nil
}
