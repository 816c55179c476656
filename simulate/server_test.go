package simulate_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/hashicorp/consul/testutil/retry"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/pipesim/protocol"
	"github.com/travisjeffery/pipesim/simulate"
	"github.com/travisjeffery/pipesim/simulate/config"
)

const source = `{"pipeline":{"processors":[]},"docs":[{"_index":"index","_source":{"foo":"bar"}},{"_source":{"foo":"rab"}}]}`

func strPtr(s string) *string { return &s }

func version(v int16) *int16 { return &v }

func dial(t *testing.T, srv *simulate.Server, apiVersion *int16) *simulate.Conn {
	cfg := config.DefaultClientConfig()
	cfg.ClientID = "test"
	cfg.APIVersion = apiVersion
	cfg.RequestTimeout = 5 * time.Second
	conn, err := simulate.Dial(context.Background(), srv.Addr().String(), cfg)
	require.NoError(t, err)
	return conn
}

func TestServer_SimulatePipeline(t *testing.T) {
	srv, teardown := simulate.NewTestServer(t, nil)
	defer teardown()

	conn := dial(t, srv, nil)
	defer conn.Close()
	require.Equal(t, int16(protocol.SimulatePipelineMaxVersion), conn.Version(protocol.SimulatePipelineKey))

	t.Run("JSON", func(t *testing.T) {
		res, err := conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
			ID:          strPtr("my-pipeline"),
			Source:      []byte(source),
			ContentType: protocol.JSON,
			Verbose:     protocol.BoolTrue,
		})
		require.NoError(t, err)
		require.Equal(t, "my-pipeline", *res.PipelineID)
		require.True(t, res.Verbose)
		require.Len(t, res.Documents, 2)
		require.JSONEq(t, `{"foo":"bar"}`, string(res.Documents[0]))
		require.JSONEq(t, `{"foo":"rab"}`, string(res.Documents[1]))
	})

	t.Run("YAML", func(t *testing.T) {
		res, err := conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
			Source:      []byte("docs:\n  - _source:\n      foo: bar\n"),
			ContentType: protocol.YAML,
		})
		require.NoError(t, err)
		require.Nil(t, res.PipelineID)
		require.False(t, res.Verbose)
		require.Len(t, res.Documents, 1)
		require.JSONEq(t, `{"foo":"bar"}`, string(res.Documents[0]))
	})

	t.Run("SMILE", func(t *testing.T) {
		res, err := conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
			Source:      []byte(":)\n"),
			ContentType: protocol.SMILE,
		})
		require.Equal(t, protocol.ErrUnsupportedContentType, err)
		require.Equal(t, protocol.ErrUnsupportedContentType.Code(), res.ErrorCode)
	})

	t.Run("No docs", func(t *testing.T) {
		_, err := conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
			Source:      []byte(""),
			ContentType: protocol.JSON,
		})
		require.Equal(t, protocol.ErrInvalidRequest, err)
	})
}

func TestServer_LegacyClient(t *testing.T) {
	legacy := generic.NewCounter("legacy")
	metrics := simulate.NopMetrics()
	metrics.LegacyRequests = legacy

	srv, teardown := simulate.NewTestServer(t, nil, simulate.WithMetrics(metrics))
	defer teardown()

	conn := dial(t, srv, version(0))
	defer conn.Close()

	res, err := conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
		ID:          strPtr("my-pipeline"),
		Source:      []byte(source),
		ContentType: protocol.JSON,
	})
	require.NoError(t, err)
	require.False(t, res.Verbose)
	require.Len(t, res.Documents, 2)
	require.Equal(t, float64(1), legacy.Value())

	// can't be written at version 0, never leaves the client
	_, err = conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
		Source:      []byte("docs: []\n"),
		ContentType: protocol.YAML,
	})
	require.True(t, errors.Is(err, protocol.ErrContentTypeNotSupported))

	// connection is still usable
	_, err = conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
		Source:      []byte(`{"docs":[]}`),
		ContentType: protocol.JSON,
	})
	require.NoError(t, err)
	require.Equal(t, float64(2), legacy.Value())
}

func TestServer_UnsupportedVersion(t *testing.T) {
	srv, teardown := simulate.NewTestServer(t, nil)
	defer teardown()

	conn := dial(t, srv, version(protocol.SimulatePipelineMaxVersion+1))
	defer conn.Close()

	res, err := conn.SimulatePipeline(&protocol.SimulatePipelineRequest{
		Source:      []byte(source),
		ContentType: protocol.JSON,
	})
	require.Equal(t, protocol.ErrUnsupportedVersion, err)
	require.Empty(t, res.Documents)
}

// rawBody lets tests put arbitrary bytes after a valid header.
type rawBody []byte

func (b rawBody) Encode(e protocol.PacketEncoder, _ int16) error { return e.PutRawBytes(b) }
func (b rawBody) Decode(protocol.PacketDecoder, int16) error    { return nil }
func (b rawBody) Key() int16                                     { return protocol.SimulatePipelineKey }

func roundTripRaw(t *testing.T, conn net.Conn, r *bufio.Reader, version int16, body rawBody) *protocol.SimulatePipelineResponse {
	b, err := protocol.Encode(&protocol.Request{CorrelationID: 1, ClientID: "raw", APIVersion: version, Body: body})
	require.NoError(t, err)
	_, err = conn.Write(b)
	require.NoError(t, err)

	p := make([]byte, 4)
	_, err = io.ReadFull(r, p)
	require.NoError(t, err)
	frame := make([]byte, int(protocol.MakeInt32(p))+4)
	copy(frame, p)
	_, err = io.ReadFull(r, frame[4:])
	require.NoError(t, err)

	resp := new(protocol.SimulatePipelineResponse)
	require.NoError(t, (&protocol.Response{Body: resp}).Decode(protocol.NewDecoder(frame), version))
	return resp
}

func TestServer_CorruptRequests(t *testing.T) {
	decodeErrors := generic.NewCounter("decode_errors")
	metrics := simulate.NopMetrics()
	metrics.DecodeErrors = decodeErrors

	srv, teardown := simulate.NewTestServer(t, nil, simulate.WithMetrics(metrics))
	defer teardown()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	r := bufio.NewReader(conn)

	// no id, content type 9, empty source, verbose unset
	res := roundTripRaw(t, conn, r, 1, rawBody{0, 9, 0, 0, 0, 0, 0})
	require.Equal(t, protocol.ErrUnsupportedContentType.Code(), res.ErrorCode)

	// missing verbose
	res = roundTripRaw(t, conn, r, 0, rawBody{0, 0, 0, 0, 2, '{', '}'})
	require.Equal(t, protocol.ErrCorruptMessage.Code(), res.ErrorCode)

	// trailing bytes
	res = roundTripRaw(t, conn, r, 0, rawBody{0, 0, 0, 0, 0, 0, 0})
	require.Equal(t, protocol.ErrCorruptMessage.Code(), res.ErrorCode)

	require.Equal(t, float64(3), decodeErrors.Value())

	// still answering on the same connection
	res = roundTripRaw(t, conn, r, 0, rawBody{0, 0, 0, 0, 11, '{', '"', 'd', 'o', 'c', 's', '"', ':', '[', ']', '}', 0})
	require.Equal(t, protocol.ErrNone.Code(), res.ErrorCode)
}

func TestServer_UnknownAPIKeyClosesConn(t *testing.T) {
	srv, teardown := simulate.NewTestServer(t, nil)
	defer teardown()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	// size, api key 42, version 0, correlation id 1, empty client id
	_, err = conn.Write([]byte{0, 0, 0, 10, 0, 42, 0, 0, 0, 0, 0, 1, 0, 0})
	require.NoError(t, err)

	_, err = conn.Read(make([]byte, 1))
	require.Equal(t, io.EOF, err)
}

func TestServer_CloseStopsAccepting(t *testing.T) {
	srv, teardown := simulate.NewTestServer(t, nil)
	addr := srv.Addr().String()
	teardown()

	retry.Run(t, func(r *retry.R) {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			r.Fatal("server still accepting")
		}
	})
}

func TestServer_OversizedFrameClosesConn(t *testing.T) {
	for _, limit := range []int32{0, 1024} {
		srv, teardown := simulate.NewTestServer(t, func(cfg *config.ServerConfig) {
			cfg.MaxRequestSize = limit
		})

		conn, err := net.Dial("tcp", srv.Addr().String())
		require.NoError(t, err)
		conn.SetDeadline(time.Now().Add(5 * time.Second))

		_, err = conn.Write([]byte{0x7f, 0xff, 0xff, 0xff})
		require.NoError(t, err)

		_, err = conn.Read(make([]byte, 1))
		require.Equal(t, io.EOF, err, "limit %d", limit)

		// the server survived and still answers
		c := dial(t, srv, nil)
		_, err = c.APIVersions()
		require.NoError(t, err)

		c.Close()
		conn.Close()
		teardown()
	}
}

func TestServer_CloseWithIdleConn(t *testing.T) {
	srv, teardown := simulate.NewTestServer(t, func(cfg *config.ServerConfig) {
		cfg.IdleTimeout = time.Hour
	})

	conn := dial(t, srv, nil)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		teardown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("close blocked on an idle connection")
	}
}
