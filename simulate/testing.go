package simulate

import (
	"context"

	"github.com/mitchellh/go-testing-interface"
	dynaport "github.com/travisjeffery/go-dynaport"
	"github.com/travisjeffery/pipesim/log"
	"github.com/travisjeffery/pipesim/simulate/config"
)

// NewTestServer starts a server on a free local port with the identity
// simulator. The returned func shuts it down.
func NewTestServer(t testing.T, cbServer func(cfg *config.ServerConfig), opts ...TestServerOption) (*Server, func()) {
	ports := dynaport.GetS(1)

	serverConfig := config.DefaultServerConfig()
	serverConfig.Addr = "127.0.0.1:" + ports[0]
	serverConfig.HTTPAddr = ""

	if cbServer != nil {
		cbServer(serverConfig)
	}

	o := &testServerOptions{simulator: IdentitySimulator{}}
	for _, opt := range opts {
		opt(o)
	}

	logger := log.NewNop()
	handler := NewHandler(o.simulator, o.metrics, nil, logger)
	srv := NewServer(serverConfig, handler, nil, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		cancel()
		t.Fatalf("err != nil: %s", err)
	}

	return srv, func() {
		cancel()
		srv.Close()
		srv.Wait()
	}
}

type testServerOptions struct {
	simulator Simulator
	metrics   *Metrics
}

type TestServerOption func(*testServerOptions)

func WithSimulator(s Simulator) TestServerOption {
	return func(o *testServerOptions) { o.simulator = s }
}

func WithMetrics(m *Metrics) TestServerOption {
	return func(o *testServerOptions) { o.metrics = m }
}
