package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrFileTooLarge = errors.New("file exceeds size limit")
	ErrTypeMismatch = errors.New("cached value has unexpected type")
)
