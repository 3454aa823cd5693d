package mesh

import "errors"

var (
	// ErrInvalidResolution reports a resolution below the minimum its
	// stepping formula needs, or a vertex count that overflows uint32 indices.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrInvalidDimension reports a non-finite or out-of-range size parameter.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrNotImplemented is returned by generators that exist only as stubs.
	ErrNotImplemented = errors.New("not implemented")
)
