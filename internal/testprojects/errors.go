package testprojects

import "errors"

// Sentinel kinds for generator errors.
var (
	ErrUnknownProfile = errors.New("unknown project profile")
	ErrProjectExists  = errors.New("project directory already exists")
)
