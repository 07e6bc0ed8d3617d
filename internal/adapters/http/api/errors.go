package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("missing or invalid credentials")
	ErrForbidden    = errors.New("not authorized to view this user's stats")
)
