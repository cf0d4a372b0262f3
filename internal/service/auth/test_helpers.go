package auth

import "time"

// NewTestJWTService creates a JWT service with an injectable time function
// for predictable expiry testing. The refresh lifetime is fixed at four
// times the access lifetime, which is enough for every expiry scenario the
// tests exercise.
func NewTestJWTService(secret string, tokenLifetime time.Duration, timeFunc func() time.Time) JWTService {
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        tokenLifetime,
		refreshTokenLifetime: 4 * tokenLifetime,
		timeFunc:             timeFunc,
		clockSkew:            0, // No leeway so expiry tests are exact
	}
}
