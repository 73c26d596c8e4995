package ovr

import "errors"

// Failures reported to callers. Wrapped errors should be matched with
// errors.Is.
var (
	ErrNotConnected         = errors.New("controller not connected")
	ErrInvalidBuffer        = errors.New("invalid haptics buffer")
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrInternalQueryFailure = errors.New("input query failed")
)
