package repository

import "errors"

// ErrNotFound is returned when a lookup matches no record.
// Callers should test with errors.Is since repositories wrap it with context.
var ErrNotFound = errors.New("record not found")
