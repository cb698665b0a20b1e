package common

import "errors"

var (
	// ErrorNotFound is returned by repositories when a row does not exist.
	ErrorNotFound = errors.New("not found")

	// ErrInvalidToken is returned when a bearer token cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")
)
