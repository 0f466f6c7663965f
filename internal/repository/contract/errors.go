package contract

import "errors"

// ErrNotFound is returned by writes that target a row which does not exist.
// Reads return a nil entity instead.
var ErrNotFound = errors.New("record not found")
