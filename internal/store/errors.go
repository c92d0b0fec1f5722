package store

import "errors"

// ErrConflict is returned when a cycle with the same id was already saved.
var ErrConflict = errors.New("already exists")
