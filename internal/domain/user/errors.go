package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrUserInactive            = errors.New("user account is inactive")
	ErrUserAlreadyOffboarded   = errors.New("user has already been offboarded")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCrossOrganization       = errors.New("user belongs to another organization")
)
