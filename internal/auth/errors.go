package auth

import "errors"

// Service error kinds. Storage kinds live next to their stores:
// token.ErrNotFound, token.ErrStoreFailure, user.ErrNotFound,
// user.ErrDuplicateEmail and user.ErrQueryExecution.
var (
	// ErrUserNotFound also covers a reset attempt whose token id or temporary
	// password does not match, so callers cannot tell which check failed.
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidFormat is returned when a stored token blob cannot be decoded
	ErrInvalidFormat = errors.New("invalid token format")

	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
