package lifecycle

import "errors"

var (
	ErrNotFound     = errors.New("lifecycle: not found")
	ErrInvalidInput = errors.New("lifecycle: invalid input")
)
