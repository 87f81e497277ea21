package rope

import "github.com/cockroachdb/errors"

// Errors returned by rope operations. Returned errors wrap these with the
// offending position, so test for them with errors.Is.
var (
	// ErrIndexOutOfRange is returned by At for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("rope: index out of range")

	// ErrRangeOutOfBounds is returned for a range that is inverted or
	// extends past the end of the rope or buffer.
	ErrRangeOutOfBounds = errors.New("rope: range out of bounds")
)

func indexError(i, length int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", i, length)
}

func rangeError(start, end, length int) error {
	return errors.Wrapf(ErrRangeOutOfBounds, "range [%d, %d), length %d", start, end, length)
}
