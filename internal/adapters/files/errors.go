package files

import "errors"

// Sentinel kinds for project scanning errors.
var (
	ErrNotADirectory = errors.New("not a directory")
)
