// Package xcontent parses request sources according to their content type.
package xcontent

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/travisjeffery/pipesim/protocol"
	"github.com/ugorji/go/codec"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupported = errors.New("xcontent: unsupported content type")
	ErrNotObject   = errors.New("xcontent: source is not an object")
)

var (
	mapType    = reflect.TypeOf(map[string]interface{}(nil))
	jsonHandle = &codec.JsonHandle{}
	cborHandle = &codec.CborHandle{}
)

func init() {
	jsonHandle.MapType = mapType
	jsonHandle.Canonical = true
	cborHandle.MapType = mapType
}

// Parse decodes b as a single object. An empty source is an empty object.
func Parse(ct protocol.ContentType, b []byte) (map[string]interface{}, error) {
	if len(b) == 0 {
		return map[string]interface{}{}, nil
	}
	var v interface{}
	var err error
	switch ct {
	case protocol.JSON:
		err = codec.NewDecoderBytes(b, jsonHandle).Decode(&v)
	case protocol.CBOR:
		err = codec.NewDecoderBytes(b, cborHandle).Decode(&v)
	case protocol.YAML:
		err = yaml.Unmarshal(b, &v)
	default:
		return nil, errors.Wrapf(ErrUnsupported, "%s", ct)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "xcontent: parse %s", ct)
	}
	if v == nil {
		return map[string]interface{}{}, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrNotObject, "got %T", v)
	}
	return m, nil
}

// MarshalJSON encodes v as JSON with map keys sorted.
func MarshalJSON(v interface{}) ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, jsonHandle).Encode(v); err != nil {
		return nil, err
	}
	return b, nil
}

// MarshalCBOR encodes v as CBOR.
func MarshalCBOR(v interface{}) ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	return b, nil
}
