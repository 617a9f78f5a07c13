package service

import "errors"

var (
	ErrValidation    = errors.New("validation")     // 400
	ErrTotalMismatch = errors.New("total mismatch") // 400
	ErrEmptyCart     = errors.New("cart is empty")  // 400
	ErrNotFound      = errors.New("not found")      // 404
)
