package simulate

import (
	"context"
	"testing"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/pipesim/log"
	"github.com/travisjeffery/pipesim/protocol"
)

type simulatorFunc func(context.Context, *protocol.SimulatePipelineRequest) (*protocol.SimulatePipelineResponse, error)

func (f simulatorFunc) Simulate(ctx context.Context, req *protocol.SimulatePipelineRequest) (*protocol.SimulatePipelineResponse, error) {
	return f(ctx, req)
}

func newContext(key, version int16, req protocol.Body) *Context {
	return &Context{
		Context: context.Background(),
		Header:  &protocol.RequestHeader{APIKey: key, APIVersion: version, CorrelationID: 7, ClientID: "test"},
		Request: req,
	}
}

func TestHandler_APIVersions(t *testing.T) {
	h := NewHandler(IdentitySimulator{}, nil, nil, log.NewNop())
	res := h.Run(newContext(protocol.APIVersionsKey, 0, &protocol.APIVersionsRequest{}))
	require.Equal(t, &protocol.APIVersionsResponse{APIVersions: protocol.APIVersions}, res)
}

func TestHandler_SimulatePipeline(t *testing.T) {
	handled := generic.NewCounter("handled")
	legacy := generic.NewCounter("legacy")
	metrics := NopMetrics()
	metrics.RequestsHandled = handled
	metrics.LegacyRequests = legacy

	h := NewHandler(IdentitySimulator{}, metrics, nil, log.NewNop())
	req := &protocol.SimulatePipelineRequest{ContentType: protocol.JSON, Source: []byte(`{"docs":[{"a":1}]}`)}

	res := h.Run(newContext(protocol.SimulatePipelineKey, 1, req)).(*protocol.SimulatePipelineResponse)
	require.NoError(t, res.Err())
	require.Len(t, res.Documents, 1)
	require.Equal(t, float64(0), legacy.Value())

	res = h.Run(newContext(protocol.SimulatePipelineKey, 0, req)).(*protocol.SimulatePipelineResponse)
	require.NoError(t, res.Err())
	require.Equal(t, float64(1), legacy.Value())
	require.Equal(t, float64(2), handled.Value())
}

func TestHandler_SimulatorError(t *testing.T) {
	id := "pipe"
	tests := []struct {
		err  error
		code protocol.Error
	}{
		{err: errors.Wrap(protocol.ErrInvalidRequest, "bad"), code: protocol.ErrInvalidRequest},
		{err: protocol.ErrUnsupportedContentType, code: protocol.ErrUnsupportedContentType},
		{err: errors.New("boom"), code: protocol.ErrUnknown},
	}
	for _, test := range tests {
		h := NewHandler(simulatorFunc(func(context.Context, *protocol.SimulatePipelineRequest) (*protocol.SimulatePipelineResponse, error) {
			return nil, test.err
		}), nil, nil, log.NewNop())
		res := h.Run(newContext(protocol.SimulatePipelineKey, 1, &protocol.SimulatePipelineRequest{ID: &id}))
		require.Equal(t, &protocol.SimulatePipelineResponse{ErrorCode: test.code.Code(), PipelineID: &id}, res)
	}
}

func TestErrorBody(t *testing.T) {
	require.Equal(t,
		&protocol.APIVersionsResponse{ErrorCode: protocol.ErrUnsupportedVersion.Code(), APIVersions: protocol.APIVersions},
		errorBody(protocol.APIVersionsKey, protocol.ErrUnsupportedVersion),
	)
	require.Equal(t,
		&protocol.SimulatePipelineResponse{ErrorCode: protocol.ErrCorruptMessage.Code()},
		errorBody(protocol.SimulatePipelineKey, protocol.ErrCorruptMessage),
	)
}
