package model

import "errors"

// Sentinel kinds for domain validation errors.
var (
	ErrInvalidShoe     = errors.New("invalid shoe")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownTag      = errors.New("unknown tag")
)
