package simulate

import (
	"context"
	"net"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/travisjeffery/pipesim/protocol"
	"github.com/travisjeffery/pipesim/simulate/config"
)

// Dial connects to addr, retrying with exponential backoff, and settles the
// simulate pipeline version either from cfg or by negotiating with the server.
func Dial(ctx context.Context, addr string, cfg *config.ClientConfig) (*Conn, error) {
	if cfg == nil {
		cfg = config.DefaultClientConfig()
	}

	var (
		d    net.Dialer
		conn net.Conn
	)
	op := func() error {
		var err error
		conn, err = d.DialContext(ctx, "tcp", addr)
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.DialRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "pipesim-" + uuid.NewV4().String()
	}

	c := NewConn(conn, clientID)
	c.SetTimeout(cfg.RequestTimeout)
	if cfg.APIVersion != nil {
		c.SetVersion(protocol.SimulatePipelineKey, *cfg.APIVersion)
		return c, nil
	}
	if err := c.Negotiate(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
