package services

import "errors"

var (
	ErrAuthenticationRequired = errors.New("Authentication required")
	ErrForbidden              = errors.New("Forbidden")
	ErrNotFound               = errors.New("Not found")
	ErrValidation             = errors.New("validation failed")
	ErrUpload                 = errors.New("image upload failed")
)
