package xcontent

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/pipesim/protocol"
)

func TestParse(t *testing.T) {
	req := require.New(t)

	m, err := Parse(protocol.JSON, []byte(`{"docs":[{"_source":{"foo":"bar"}}]}`))
	req.NoError(err)
	req.Len(m["docs"], 1)

	m, err = Parse(protocol.YAML, []byte("docs:\n  - _source:\n      foo: bar\n"))
	req.NoError(err)
	b, err := MarshalJSON(m)
	req.NoError(err)
	req.JSONEq(`{"docs":[{"_source":{"foo":"bar"}}]}`, string(b))

	cbor, err := MarshalCBOR(map[string]interface{}{"docs": []interface{}{map[string]interface{}{"foo": "bar"}}})
	req.NoError(err)
	m, err = Parse(protocol.CBOR, cbor)
	req.NoError(err)
	b, err = MarshalJSON(m)
	req.NoError(err)
	req.JSONEq(`{"docs":[{"foo":"bar"}]}`, string(b))
}

func TestParse_Empty(t *testing.T) {
	for _, ct := range []protocol.ContentType{protocol.JSON, protocol.YAML, protocol.CBOR, protocol.SMILE} {
		m, err := Parse(ct, nil)
		require.NoError(t, err)
		require.Empty(t, m)
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(protocol.SMILE, []byte(":)\n"))
	require.True(t, errors.Is(err, ErrUnsupported))
	require.Equal(t, ErrUnsupported, errors.Cause(err))

	_, err = Parse(protocol.JSON, []byte(`[1, 2]`))
	require.True(t, errors.Is(err, ErrNotObject))
	require.Equal(t, ErrNotObject, errors.Cause(err))

	_, err = Parse(protocol.JSON, []byte(`{"docs":`))
	require.Error(t, err)
}
