package simulate

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/travisjeffery/pipesim/protocol"
)

// Conn is a client connection to a pipesim server. Round trips are serialised;
// it's safe for concurrent use.
type Conn struct {
	conn          net.Conn
	mu            sync.Mutex
	rbuf          *bufio.Reader
	wbuf          *bufio.Writer
	clientID      string
	correlationID int32
	timeout       time.Duration
	versions      map[int16]int16
}

// NewConn creates a new *Conn. Until Negotiate or SetVersion is called every
// api is spoken at its lowest version.
func NewConn(conn net.Conn, clientID string) *Conn {
	return &Conn{
		conn:     conn,
		clientID: clientID,
		rbuf:     bufio.NewReader(conn),
		wbuf:     bufio.NewWriter(conn),
		versions: make(map[int16]int16),
	}
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close closes the connection.
func (c *Conn) Close() error { return c.conn.Close() }

// ClientID returns the id sent in request headers.
func (c *Conn) ClientID() string { return c.clientID }

// SetTimeout bounds each round trip. Zero means no deadline.
func (c *Conn) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// SetVersion pins the version used for key.
func (c *Conn) SetVersion(key, version int16) {
	c.mu.Lock()
	c.versions[key] = version
	c.mu.Unlock()
}

// Version returns the version used for key.
func (c *Conn) Version(key int16) int16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.versions[key]; ok {
		return v
	}
	if v, ok := protocol.LookupAPIVersion(protocol.APIVersions, key); ok {
		return v.MinVersion
	}
	return 0
}

// APIVersions asks the server which versions it speaks.
func (c *Conn) APIVersions() (*protocol.APIVersionsResponse, error) {
	var resp protocol.APIVersionsResponse
	if err := c.roundTrip(&protocol.APIVersionsRequest{}, protocol.APIVersionsMinVersion, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorCode != protocol.ErrNone.Code() {
		return &resp, protocol.Error(resp.ErrorCode)
	}
	return &resp, nil
}

// Negotiate runs the api versions handshake and settles on the highest version
// of every api that both sides speak.
func (c *Conn) Negotiate() error {
	resp, err := c.APIVersions()
	if err != nil {
		return errors.Wrap(err, "api versions")
	}
	for _, local := range protocol.APIVersions {
		remote, ok := protocol.LookupAPIVersion(resp.APIVersions, local.APIKey)
		if !ok {
			continue
		}
		v, err := protocol.NegotiateVersion(local, remote)
		if err != nil {
			return err
		}
		c.SetVersion(local.APIKey, v)
	}
	return nil
}

// SimulatePipeline sends a simulate pipeline request and returns the response.
// A non-zero error code in the response is returned as a protocol.Error along
// with the response.
func (c *Conn) SimulatePipeline(req *protocol.SimulatePipelineRequest) (*protocol.SimulatePipelineResponse, error) {
	var resp protocol.SimulatePipelineResponse
	if err := c.roundTrip(req, c.Version(protocol.SimulatePipelineKey), &resp); err != nil {
		return nil, err
	}
	return &resp, resp.Err()
}

func (c *Conn) roundTrip(body protocol.Body, version int16, resp protocol.ResponseBody) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.correlationID++
	id := c.correlationID

	b, err := protocol.Encode(&protocol.Request{
		CorrelationID: id,
		ClientID:      c.clientID,
		APIVersion:    version,
		Body:          body,
	})
	if err != nil {
		return err
	}

	if c.timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.timeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	if _, err = c.wbuf.Write(b); err == nil {
		err = c.wbuf.Flush()
	}
	if err != nil {
		c.conn.Close()
		return errors.Wrap(err, "write request")
	}

	frame, err := c.readFrame()
	if err != nil {
		c.conn.Close()
		return errors.Wrap(err, "read response")
	}

	res := &protocol.Response{Body: resp}
	if err = res.Decode(protocol.NewDecoder(frame), version); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if res.CorrelationID != id {
		c.conn.Close()
		return errors.Errorf("correlation id mismatch: sent %d, got %d", id, res.CorrelationID)
	}
	return nil
}

func (c *Conn) readFrame() ([]byte, error) {
	p, err := c.rbuf.Peek(4)
	if err != nil {
		return nil, err
	}
	size := protocol.MakeInt32(p)
	if size < 4 || size > maxFrameSize {
		return nil, errors.Errorf("invalid response size %d", size)
	}
	b := make([]byte, int(size)+4)
	if _, err = io.ReadFull(c.rbuf, b); err != nil {
		return nil, err
	}
	return b, nil
}
