package simulate

import (
	"github.com/cespare/xxhash"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/travisjeffery/pipesim/log"
	"github.com/travisjeffery/pipesim/protocol"
)

// Handler turns decoded requests into response bodies.
type Handler struct {
	simulator Simulator
	tracer    opentracing.Tracer
	metrics   *Metrics
	logger    log.Logger
}

func NewHandler(simulator Simulator, metrics *Metrics, tracer opentracing.Tracer, logger log.Logger) *Handler {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	return &Handler{
		simulator: simulator,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run handles a request and returns the body to send back.
func (h *Handler) Run(ctx *Context) protocol.ResponseBody {
	h.metrics.RequestsHandled.Add(1)

	switch req := ctx.Request.(type) {
	case *protocol.APIVersionsRequest:
		return h.handleAPIVersions(ctx, req)
	case *protocol.SimulatePipelineRequest:
		return h.handleSimulatePipeline(ctx, req)
	}
	return errorBody(ctx.Header.APIKey, protocol.ErrUnknownAPIKey)
}

func (h *Handler) handleAPIVersions(ctx *Context, req *protocol.APIVersionsRequest) *protocol.APIVersionsResponse {
	sp := span(ctx, h.tracer, "api versions")
	defer sp.Finish()
	return &protocol.APIVersionsResponse{APIVersions: protocol.APIVersions}
}

func (h *Handler) handleSimulatePipeline(ctx *Context, req *protocol.SimulatePipelineRequest) *protocol.SimulatePipelineResponse {
	sp := span(ctx, h.tracer, "simulate pipeline")
	defer sp.Finish()

	legacy := ctx.Header.APIVersion < protocol.SimulatePipelineContentTypeVersion
	if legacy {
		h.metrics.LegacyRequests.Add(1)
	}
	sp.SetTag("content_type", req.ContentType.String())
	sp.SetTag("verbose", req.Verbose.String())
	sp.SetTag("source_hash", xxhash.Sum64(req.Source))
	sp.SetTag("legacy", legacy)

	res, err := h.simulator.Simulate(opentracing.ContextWithSpan(ctx, sp), req)
	if err != nil {
		code := protocol.CodeOf(err)
		sp.LogKV("msg", "simulate failed", "err", err)
		h.logger.Error("simulate failed",
			log.Error("error", err),
			log.Int16("code", code.Code()),
			log.Int32("correlation id", ctx.Header.CorrelationID),
			log.Uint64("source hash", xxhash.Sum64(req.Source)),
		)
		return &protocol.SimulatePipelineResponse{ErrorCode: code.Code(), PipelineID: req.ID}
	}
	return res
}

// errorBody builds the response body for key carrying only an error code.
func errorBody(key int16, code protocol.Error) protocol.ResponseBody {
	switch key {
	case protocol.APIVersionsKey:
		// clients need the table to retry at a version we speak
		return &protocol.APIVersionsResponse{ErrorCode: code.Code(), APIVersions: protocol.APIVersions}
	default:
		return &protocol.SimulatePipelineResponse{ErrorCode: code.Code()}
	}
}

func span(ctx *Context, tracer opentracing.Tracer, op string) opentracing.Span {
	if ctx == nil {
		return tracer.StartSpan(op)
	}
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		return tracer.StartSpan(op, opentracing.ChildOf(parent.Context()))
	}
	return tracer.StartSpan(op)
}
