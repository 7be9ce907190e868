package authz

import "errors"

var (
	ErrNotFound     = errors.New("authz: not found")
	ErrInvalidInput = errors.New("authz: invalid input")
	ErrUnauthorized = errors.New("authz: unauthorized")
)
