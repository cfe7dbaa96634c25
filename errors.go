package multibuf

import "errors"

// Errors returned by aggregate operations.
var (
	// ErrInvalidRange indicates an excerpt range falls outside its
	// buffer's current extent, or a range is malformed (end < start).
	ErrInvalidRange = errors.New("excerpt range outside buffer extent")

	// ErrUnknownExcerpt indicates an operation referenced an excerpt id
	// that is not present in the index.
	ErrUnknownExcerpt = errors.New("unknown excerpt")

	// ErrOffsetOutOfRange indicates an offset outside the aggregate's
	// current extent.
	ErrOffsetOutOfRange = errors.New("offset out of range")
)
