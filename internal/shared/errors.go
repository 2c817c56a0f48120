package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRequired indicates a protected mutation was attempted without a bearer token.
	ErrTokenRequired = errors.New("bearer token required")
)
