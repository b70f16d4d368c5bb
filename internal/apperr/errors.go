package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation rejected")
	ErrDecode     = errors.New("decode failure")
)
