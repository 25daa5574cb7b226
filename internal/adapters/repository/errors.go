package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrInvalidLimit  = errors.New("invalid match limit")
)
