package protocol

import (
	"errors"
	"fmt"
)

// Error codes sent back to clients in response bodies.
const (
	ErrUnknown Error = iota - 1
	ErrNone
	ErrCorruptMessage
	ErrUnsupportedVersion
	ErrInvalidRequest
	ErrUnsupportedContentType
	ErrUnknownAPIKey
)

// Error represents a protocol err. It makes it so the errors can have their
// error code and description too.
type Error int16

func (e Error) Code() int16 {
	return int16(e)
}

func (e Error) Error() string {
	switch e {
	case ErrUnknown:
		return "unknown"
	case ErrNone:
		return "none"
	case ErrCorruptMessage:
		return "corrupt message"
	case ErrUnsupportedVersion:
		return "unsupported version"
	case ErrInvalidRequest:
		return "invalid request"
	case ErrUnsupportedContentType:
		return "unsupported content type"
	case ErrUnknownAPIKey:
		return "unknown api key"
	default:
		return fmt.Sprintf("error code %d not bound", e)
	}
}

// CodeOf maps a decode failure to the code reported to the client.
func CodeOf(err error) Error {
	var perr Error
	switch {
	case err == nil:
		return ErrNone
	case errors.As(err, &perr):
		return perr
	case errors.Is(err, ErrUnknownContentType), errors.Is(err, ErrContentTypeNotSupported):
		return ErrUnsupportedContentType
	case errors.Is(err, ErrInsufficientData),
		errors.Is(err, ErrInvalidBool),
		errors.Is(err, ErrInvalidStringLength),
		errors.Is(err, ErrInvalidByteSliceLength),
		errors.Is(err, ErrInvalidArrayLength):
		return ErrCorruptMessage
	}
	return ErrUnknown
}
