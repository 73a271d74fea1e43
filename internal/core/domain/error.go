package domain

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDriverNotFound    = errors.New("driver not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrForbidden         = errors.New("actor not allowed to perform this action")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDriverUnavailable = errors.New("driver no longer available")
	ErrNotAssignedDriver = errors.New("booking is not assigned to this driver")
)
