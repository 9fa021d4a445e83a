package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrNegativeStock          = errors.New("stock cannot become negative")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrAlreadyExists          = errors.New("already exists")
)
