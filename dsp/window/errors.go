package window

import "errors"

var (
	// ErrMismatchedLength reports samples and coefficients of different
	// lengths.
	ErrMismatchedLength = errors.New("window: mismatched lengths")
	// ErrUnknownType reports an unrecognised window name.
	ErrUnknownType = errors.New("window: unknown type")
)
