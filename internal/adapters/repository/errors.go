package repository

import "errors"

// Sentinel kinds for result store errors.
var (
	ErrDuplicate       = errors.New("category result already recorded")
	ErrInvalidCategory = errors.New("invalid category")
)
