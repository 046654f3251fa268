package domain

import "errors"

var (
	ErrNoMembers           = errors.New("disturb service has no members")
	ErrInvalidRate         = errors.New("rate must be a positive finite number")
	ErrInvalidRestoreDelay = errors.New("restore delay must be positive")
	ErrEmptyAlphabet       = errors.New("alphabet must not be empty")
	ErrAlreadyStarted      = errors.New("disturb service already started")
	ErrServiceStopped      = errors.New("disturb service stopped")
	ErrMarkerClassRequired = errors.New("marker class is required")
	ErrElementNotFound     = errors.New("element not found")
)
