package simulate

import (
	"context"
	"io"
	"math"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/travisjeffery/pipesim/log"
	"github.com/travisjeffery/pipesim/protocol"
	"github.com/travisjeffery/pipesim/simulate/config"
	"github.com/travisjeffery/pipesim/simulate/util"
)

var (
	serverVerboseLogs bool

	errFrameTooLarge = errors.New("frame exceeds max request size")
	errEmptyFrame    = errors.New("empty frame")
)

// maxFrameSize leaves room for the size prefix in an int32 length.
const maxFrameSize = math.MaxInt32 - 4

func init() {
	spew.Config.Indent = ""

	e := os.Getenv("PIPESIMDEBUG")
	if strings.Contains(e, "server=1") {
		serverVerboseLogs = true
	}
}

// Server is used to handle the TCP connections, decode requests,
// defer to the handler, and encode the responses.
type Server struct {
	config     *config.ServerConfig
	ln         net.Listener
	logger     log.Logger
	handler    *Handler
	metrics    *Metrics
	tracer     opentracing.Tracer
	shutdownCh chan struct{}
	shutdown   sync.Once
	wg         sync.WaitGroup
	close      func() error
}

func NewServer(config *config.ServerConfig, handler *Handler, tracer opentracing.Tracer, close func() error, logger log.Logger) *Server {
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	s := &Server{
		config:     config,
		handler:    handler,
		metrics:    handler.metrics,
		logger:     logger.With(log.String("addr", config.Addr)),
		tracer:     tracer,
		shutdownCh: make(chan struct{}),
		close:      close,
	}
	return s
}

// Start listens on the configured address and serves connections until ctx is
// done or Close is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.config.Addr)
	}
	s.ln = ln
	s.logger.Info("hello", log.String("listen addr", ln.Addr().String()))

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.shutdownCh:
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.shutdownCh:
					return
				default:
				}
				s.logger.Error("listener accept failed", log.Error("error", err))
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.handleConn(ctx, conn)
			}()
		}
	}()

	return nil
}

// Close stops accepting connections. Connections in flight finish their
// current request.
func (s *Server) Close() error {
	var err error
	s.shutdown.Do(func() {
		close(s.shutdownCh)
		if s.ln != nil {
			err = s.ln.Close()
		}
		if s.close != nil {
			if cerr := s.close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}

// Wait blocks until every connection goroutine has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Addr returns the address on which the Server is listening
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With(log.String("remote addr", conn.RemoteAddr().String()))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-s.shutdownCh:
		case <-done:
			return
		}
		// unblock the read below
		conn.SetReadDeadline(time.Now())
	}()

	p := make([]byte, 4)
	for {
		select {
		case <-s.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
		}
		if s.config.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
			// the watcher may have unblocked us just before the deadline moved
			select {
			case <-s.shutdownCh:
				return
			case <-ctx.Done():
				return
			default:
			}
		}
		_, err := io.ReadFull(conn, p)
		if err == io.EOF {
			return
		}
		if err != nil {
			select {
			case <-s.shutdownCh:
			default:
				logger.Debug("conn read failed", log.Error("error", err))
			}
			return
		}

		b, err := s.readFrame(conn, p)
		if err != nil {
			logger.Error("failed to read frame", log.Error("error", err))
			return
		}

		res, err := s.handleFrame(ctx, b)
		if err != nil {
			logger.Error("failed to handle request", log.Error("error", err))
			return
		}

		if err := s.writeResponse(conn, res); err != nil {
			logger.Error("failed to write response", log.Error("error", err))
			return
		}
	}
}

func (s *Server) readFrame(conn net.Conn, p []byte) ([]byte, error) {
	size := protocol.MakeInt32(p)
	if size <= 0 {
		return nil, errEmptyFrame
	}
	if size > s.maxRequestSize() {
		return nil, errors.Wrapf(errFrameTooLarge, "size %d", size)
	}

	b := make([]byte, int(size)+4) //+4 since we're going to copy the size into b
	copy(b, p)
	if _, err := io.ReadFull(conn, b[4:]); err != nil {
		return nil, errors.Wrap(err, "read frame")
	}
	return b, nil
}

// maxRequestSize is the configured limit, or the largest frame the size prefix
// can describe when the limit is disabled.
func (s *Server) maxRequestSize() int32 {
	if s.config.MaxRequestSize <= 0 || s.config.MaxRequestSize > maxFrameSize {
		return maxFrameSize
	}
	return s.config.MaxRequestSize
}

// handleFrame decodes a request frame and runs it. It only returns an error
// when the frame can't be answered at all, which closes the connection.
func (s *Server) handleFrame(ctx context.Context, b []byte) (*protocol.Response, error) {
	span := s.tracer.StartSpan("request")
	defer span.Finish()

	d := protocol.NewDecoder(b)
	header := new(protocol.RequestHeader)
	if err := header.Decode(d); err != nil {
		span.LogKV("msg", "failed to decode header", "err", err)
		return nil, errors.Wrap(err, "decode header")
	}

	span.SetTag("api_key", header.APIKey)
	span.SetTag("api_version", header.APIVersion)
	span.SetTag("correlation_id", header.CorrelationID)
	span.SetTag("client_id", header.ClientID)
	span.SetTag("size", header.Size)

	res := &protocol.Response{
		CorrelationID: header.CorrelationID,
		APIVersion:    header.APIVersion,
	}

	body := protocol.AllocateBody(header.APIKey)
	if body == nil {
		span.LogKV("msg", "unknown api key")
		return nil, errors.Wrapf(protocol.ErrUnknownAPIKey, "api key %d", header.APIKey)
	}

	if v, ok := protocol.LookupAPIVersion(protocol.APIVersions, header.APIKey); !ok || !v.Supports(header.APIVersion) {
		span.LogKV("msg", "unsupported version")
		res.Body = errorBody(header.APIKey, protocol.ErrUnsupportedVersion)
		return res, nil
	}

	decodeSpan := s.tracer.StartSpan("server: decode request", opentracing.ChildOf(span.Context()))
	err := body.Decode(d, header.APIVersion)
	if err == nil {
		err = protocol.ExpectZeroSize(len(b)-d.Offset(), nil)
		if err != nil {
			err = errors.Wrap(protocol.ErrCorruptMessage, err.Error())
		}
	}
	decodeSpan.Finish()
	if err != nil {
		s.metrics.DecodeErrors.Add(1)
		s.logger.Error("failed to decode request", log.Error("error", err), log.Stringer("header", header))
		span.LogKV("msg", "failed to decode request", "err", err)
		res.Body = errorBody(header.APIKey, protocol.CodeOf(err))
		return res, nil
	}

	s.vlog(span, "request", body)

	res.Body = s.handler.Run(&Context{
		Context: opentracing.ContextWithSpan(ctx, span),
		Header:  header,
		Request: body,
	})
	s.vlog(span, "response", res.Body)
	return res, nil
}

func (s *Server) writeResponse(conn net.Conn, res *protocol.Response) error {
	e := protocol.NewEagerEncoder()
	if err := res.Encode(e); err != nil {
		return err
	}
	_, err := conn.Write(e.Bytes())
	return err
}

func (s *Server) vlog(span opentracing.Span, k string, i interface{}) {
	if serverVerboseLogs {
		span.LogKV(k, util.Dump(i))
	}
}
