package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects an opaque credential for an embedded JWT exp
// claim. The parse is unverified: the goal is to stop replaying a
// token the backend will reject anyway, not to validate it. Tokens
// that are not JWTs, or JWTs without exp, never expire from this
// check.
func tokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
