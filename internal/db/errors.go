package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrVariantUnsupported signals that the backend lacks the price-aware
	// search variant. Drivers translate their backend's "function/field not
	// found" signature into this once, so no caller ever sniffs error strings.
	ErrVariantUnsupported = errors.New("db: filtered search variant unsupported")
)

// Op constants name the backend operation for error context.
const (
	OpSearch  = "search"
	OpTagVals = "tagvals"
	OpGet     = "get"
	OpSet     = "set"
	OpDel     = "del"
	OpPing    = "ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
