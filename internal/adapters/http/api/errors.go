package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrOutsideRoot = errors.New("project path outside the projects root")
	ErrBusy        = errors.New("project is already being graded")
)
