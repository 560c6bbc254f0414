package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("user inactive")
	ErrRefreshInvalid     = errors.New("refresh token invalid or expired")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
)
