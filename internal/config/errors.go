package config

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid grader config")
	ErrLoadConfig    = errors.New("load grader config failed")
)
