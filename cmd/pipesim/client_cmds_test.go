package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/pipesim/protocol"
)

func TestContentType(t *testing.T) {
	tests := []struct {
		flag, name string
		exp        protocol.ContentType
	}{
		{name: "docs.json", exp: protocol.JSON},
		{name: "docs.yml", exp: protocol.YAML},
		{name: "docs.yaml", exp: protocol.YAML},
		{name: "docs.cbor", exp: protocol.CBOR},
		{name: "docs.smile", exp: protocol.SMILE},
		{name: "", exp: protocol.JSON},
		{flag: "yaml", name: "docs.json", exp: protocol.YAML},
		{flag: "application/cbor", exp: protocol.CBOR},
	}
	for _, test := range tests {
		ct, err := contentType(test.flag, test.name)
		require.NoError(t, err)
		require.Equal(t, test.exp, ct, "flag %q, name %q", test.flag, test.name)
	}

	_, err := contentType("text/plain", "")
	require.Error(t, err)
}

func TestPrintDocuments(t *testing.T) {
	var buf bytes.Buffer
	printDocuments(&buf, &protocol.SimulatePipelineResponse{Documents: [][]byte{[]byte(`{"a":1}`), []byte(`{}`)}})
	require.Equal(t, "{\"a\":1}\n{}\n", buf.String())
}
