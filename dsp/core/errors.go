package core

import "errors"

// Error kinds shared by all processing stages. Stages wrap these with
// context; callers match them with errors.Is.
var (
	// ErrInvalidParameter indicates a scalar argument outside its valid range
	// (stretch factor <= 0, reverb amount outside [0,1], sample rate <= 0).
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMalformedBuffer indicates a buffer that violates its shape invariants,
	// such as channels of differing length.
	ErrMalformedBuffer = errors.New("malformed buffer")
)
