package simulate

import (
	"context"

	"github.com/pkg/errors"
	"github.com/travisjeffery/pipesim/protocol"
	"github.com/travisjeffery/pipesim/xcontent"
)

// Simulator runs a pipeline over the documents in a request. Errors that wrap a
// protocol.Error are reported to the client with that code.
type Simulator interface {
	Simulate(ctx context.Context, req *protocol.SimulatePipelineRequest) (*protocol.SimulatePipelineResponse, error)
}

// IdentitySimulator parses the request source and returns every document
// unchanged. Verbose defaults to false.
type IdentitySimulator struct{}

func (IdentitySimulator) Simulate(ctx context.Context, req *protocol.SimulatePipelineRequest) (*protocol.SimulatePipelineResponse, error) {
	src, err := xcontent.Parse(req.ContentType, req.Source)
	if err != nil {
		if errors.Is(err, xcontent.ErrUnsupported) {
			return nil, errors.Wrap(protocol.ErrUnsupportedContentType, err.Error())
		}
		return nil, errors.Wrap(protocol.ErrInvalidRequest, err.Error())
	}
	docs, ok := src["docs"].([]interface{})
	if !ok {
		return nil, errors.Wrap(protocol.ErrInvalidRequest, "source must contain a docs array")
	}
	res := &protocol.SimulatePipelineResponse{
		PipelineID: req.ID,
		Verbose:    req.Verbose.Value(false),
		Documents:  make([][]byte, 0, len(docs)),
	}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m, ok := doc.(map[string]interface{}); ok {
			if source, ok := m["_source"]; ok {
				doc = source
			}
		}
		b, err := xcontent.MarshalJSON(doc)
		if err != nil {
			return nil, errors.Wrapf(protocol.ErrInvalidRequest, "doc %d: %v", i, err)
		}
		res.Documents = append(res.Documents, b)
	}
	return res, nil
}
