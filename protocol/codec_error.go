package protocol

import (
	"errors"
	"fmt"
)

// ErrContentTypeNotSupported is returned when a request's content type can't
// be represented at the negotiated version.
var ErrContentTypeNotSupported = errors.New("pipesim: content type not supported by api version")

// EncodingError reports a field that can't be written in the format selected
// for Version. Err is one of the package's sentinel errors.
type EncodingError struct {
	Field   string
	Version int16
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("pipesim: encode %s at version %d: %v", e.Field, e.Version, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError reports a field that couldn't be read. Truncated input wraps
// ErrInsufficientData; an out of range content type wraps
// ErrUnknownContentType.
type DecodingError struct {
	Field   string
	Version int16
	Err     error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("pipesim: decode %s at version %d: %v", e.Field, e.Version, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// Truncated reports whether the stream ended before the field was read.
func (e *DecodingError) Truncated() bool {
	return errors.Is(e.Err, ErrInsufficientData)
}
