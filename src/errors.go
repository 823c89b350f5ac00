package otpgen

import "errors"

var (
	ErrInvalidEncoding  = errors.New("invalid base32 secret")
	ErrEmptySecret      = errors.New("empty secret")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotFound         = errors.New("no entry with that name")
)
