package service

import "errors"

// Sentinel kinds for executor errors.
var (
	ErrInvalidConfig = errors.New("invalid executor configuration")
	ErrUnknownMode   = errors.New("unknown execution mode")
)
