package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownContentType = errors.New("pipesim: unknown content type")

// ContentType tags how a request's source should be parsed. The value is the
// ordinal written on the wire, so members must never be reordered.
type ContentType int8

const (
	JSON ContentType = iota
	SMILE
	YAML
	CBOR
)

var contentTypes = [...]struct {
	name      string
	mediaType string
}{
	JSON:  {"json", "application/json"},
	SMILE: {"smile", "application/smile"},
	YAML:  {"yaml", "application/yaml"},
	CBOR:  {"cbor", "application/cbor"},
}

// Valid reports whether c is a known member of the enumeration.
func (c ContentType) Valid() bool {
	return c >= 0 && int(c) < len(contentTypes)
}

func (c ContentType) String() string {
	if !c.Valid() {
		return fmt.Sprintf("ContentType(%d)", int8(c))
	}
	return contentTypes[c].name
}

func (c ContentType) MediaType() string {
	if !c.Valid() {
		return ""
	}
	return contentTypes[c].mediaType
}

// ParseContentType accepts a media type, with or without parameters such as
// "; charset=UTF-8", or one of the short names json, smile, yaml and cbor.
func ParseContentType(s string) (ContentType, error) {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for i, ct := range contentTypes {
		if s == ct.name || s == ct.mediaType {
			return ContentType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownContentType, s)
}
