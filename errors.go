package textrope

import (
	"errors"
	"fmt"
)

// Errors returned by rope operations. Every fallible operation wraps one
// of these sentinels with positional detail, so callers match with
// errors.Is.
var (
	// ErrOutOfBounds reports an index beyond the length in its metric.
	ErrOutOfBounds = errors.New("index out of bounds")

	// ErrNotACharBoundary reports a byte index inside a scalar value.
	ErrNotACharBoundary = errors.New("byte index is not a char boundary")

	// ErrLineOutOfBounds reports a line index beyond the line count.
	ErrLineOutOfBounds = errors.New("line index out of bounds")

	// ErrInvalidRange reports a range whose start exceeds its end.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNonUTF8Input reports input that failed UTF-8 validation.
	ErrNonUTF8Input = errors.New("input is not valid UTF-8")
)

func errOutOfBounds(metric string, idx, length int) error {
	return fmt.Errorf("%w: %s index %d, length %d", ErrOutOfBounds, metric, idx, length)
}

func errNotACharBoundary(byteIdx int) error {
	return fmt.Errorf("%w: byte index %d", ErrNotACharBoundary, byteIdx)
}

func errLineOutOfBounds(lineIdx, lines int) error {
	return fmt.Errorf("%w: line index %d, line count %d", ErrLineOutOfBounds, lineIdx, lines)
}

func errInvalidRange(start, end int) error {
	return fmt.Errorf("%w: start %d, end %d", ErrInvalidRange, start, end)
}
