package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrInvalidTokenType   = errors.New("invalid token type")
)
