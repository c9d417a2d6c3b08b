package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired inspects a stored bearer token's registered claims without
// verifying its signature (the client does not hold the signing secret) and
// reports whether it has already expired. Tokens that do not parse as JWTs or
// carry no expiry are not judged locally; the backend stays the authority and
// the resume flow finds out from the profile call.
func TokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}

	return expiry.Before(now)
}
