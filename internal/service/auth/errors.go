package auth

import "errors"

// Common authentication service errors.
//
// Validation failures deliberately collapse to ErrInvalidToken /
// ErrInvalidRefreshToken at the API boundary: clients never learn whether a
// token was malformed, forged, or expired. The finer-grained sentinels
// exist for internal logging and tests only.
var (
	// ErrInvalidToken indicates the access token is malformed, forged, or
	// otherwise unusable
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrInvalidRefreshToken indicates the refresh token is malformed,
	// forged, or otherwise unusable
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrWrongTokenType indicates a token was presented in the wrong
	// context (an access token where a refresh token is required, or vice
	// versa)
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)
