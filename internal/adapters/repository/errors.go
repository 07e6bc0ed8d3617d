package repository

import "errors"

// Sentinel kinds for store errors. The HTTP layer translates these with
// errors.Is into 404/409 responses.
var (
	ErrShoeNotFound      = errors.New("shoe not found")
	ErrAlreadyInRotation = errors.New("shoe is already in rotation")
	ErrNotInRotation     = errors.New("shoe not found in rotation")
	ErrAlreadyRetired    = errors.New("shoe is already in graveyard")
	ErrNotInGraveyard    = errors.New("shoe not found in graveyard")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrNoFields          = errors.New("no fields to update")
)
