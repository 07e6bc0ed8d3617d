package auth

import "errors"

// Sentinel kinds for auth errors.
var (
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrVerifyUnavailable = errors.New("token verification unavailable")
)
