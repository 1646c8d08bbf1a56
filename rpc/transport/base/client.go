package base

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	errNoConnections    = errors.New("no active connections available")
	errConnectionClosed = errors.New("connection is closed")
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to endpoint
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// result is what the reader hands to a waiting request
type result struct {
	data []byte
	err  error
}

// clientConnection is one multiplexed stream connection. Requests are written
// under writeMu, a single reader goroutine routes the responses to the
// waiting requests by request id.
type clientConnection struct {
	endpoint string
	parent   *clientTransport
	pending  *xsync.MapOf[uint64, chan result]
	writeMu  sync.Mutex
	done     chan struct{}

	mu   sync.RWMutex // guards conn
	conn net.Conn
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	timeout   time.Duration
	metrics   *transport.Metrics

	mu          sync.RWMutex // guards connections
	connections []*clientConnection
	nextConn    atomic.Uint64
	nextRequest atomic.Uint64
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
		metrics:   transport.NewMetrics("client", connector.GetName()),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// drop the connections of an earlier Connect
	_ = t.Close()

	t.config = config
	t.timeout = time.Duration(config.TimeoutSecond) * time.Second
	perEndpoint := max(1, config.Transport.ConnectionsPerEndpoint)

	connections := make([]*clientConnection, 0, len(config.Transport.Endpoints)*perEndpoint)
	for _, endpoint := range config.Transport.Endpoints {
		for i := 0; i < perEndpoint; i++ {
			c := &clientConnection{
				endpoint: endpoint,
				parent:   t,
				pending:  xsync.NewMapOf[uint64, chan result](),
				done:     make(chan struct{}),
			}
			if err := c.dial(); err != nil {
				transport.Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, perEndpoint, err)
				continue
			}
			go c.readLoop()
			connections = append(connections, c)
		}
	}

	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	t.mu.Lock()
	t.connections = connections
	t.mu.Unlock()

	transport.Logger.Infof("Connected %d out of %d connections to %d endpoints using %s transport",
		len(connections), len(config.Transport.Endpoints)*perEndpoint, len(config.Transport.Endpoints), t.connector.GetName())
	return nil
}

func (t *clientTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	start := time.Now()
	attempts := max(1, t.config.Transport.RetryCount)
	backoff := 50 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		c := t.next()
		if c == nil {
			lastErr = errNoConnections
			break
		}

		resp, err := c.roundTrip(shardId, t.nextRequest.Add(1), req)
		if err == nil {
			t.metrics.Observe(start, nil)
			return resp, nil
		}
		lastErr = err
		transport.Logger.Debugf("Request attempt %d/%d to %s failed: %v", attempt, attempts, c.endpoint, err)

		if attempt < attempts {
			// exponential backoff with +-10% jitter
			time.Sleep(time.Duration(float64(backoff) * (0.9 + 0.2*rand.Float64())))
			backoff *= 2
		}
	}

	t.metrics.Observe(start, lastErr)
	return nil, fmt.Errorf("failed to send request after %d attempts: %w", attempts, lastErr)
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	connections := t.connections
	t.connections = nil
	t.mu.Unlock()

	for _, c := range connections {
		c.close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// next selects the next connection round robin
func (t *clientTransport) next() *clientConnection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch len(t.connections) {
	case 0:
		return nil
	case 1:
		return t.connections[0]
	}
	return t.connections[t.nextConn.Add(1)%uint64(len(t.connections))]
}

// current returns the live net.Conn, nil while the connection is down
func (c *clientConnection) current() net.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// roundTrip writes one request and waits for its response
func (c *clientConnection) roundTrip(shardID, requestID uint64, req []byte) ([]byte, error) {
	conn := c.current()
	if conn == nil {
		return nil, errConnectionClosed
	}

	ch := make(chan result, 1)
	c.pending.Store(requestID, ch)
	defer c.pending.Delete(requestID)

	timeout := c.parent.timeout
	c.writeMu.Lock()
	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	err := writeFrame(conn, shardID, requestID, req)
	c.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case res := <-ch:
		return res.data, res.err
	case <-expired:
		return nil, fmt.Errorf("request %d timed out after %s", requestID, timeout)
	case <-c.done:
		return nil, errConnectionClosed
	}
}

// readLoop routes responses to the waiting requests. When the connection
// breaks all pending requests fail and the connection is dialed again once.
func (c *clientConnection) readLoop() {
	conn := c.current()
	for conn != nil {
		h, data, err := readFrame(conn, nil)
		if err == nil {
			if ch, ok := c.pending.LoadAndDelete(h.requestID); ok {
				ch <- result{data: data}
			} else {
				transport.Logger.Warningf("Received response for unknown request ID %d with shard ID %d", h.requestID, h.shardID)
			}
			continue
		}

		c.failPending(fmt.Errorf("error reading response: %w", err))
		select {
		case <-c.done:
			return
		default:
		}

		transport.Logger.Warningf("Connection to %s lost: %v", c.endpoint, err)
		if err := c.dial(); err != nil {
			transport.Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
			return
		}
		conn = c.current()
	}
}

// failPending completes every waiting request with err
func (c *clientConnection) failPending(err error) {
	c.pending.Range(func(id uint64, ch chan result) bool {
		if _, ok := c.pending.LoadAndDelete(id); ok {
			ch <- result{err: err}
		}
		return true
	})
}

// dial replaces the net.Conn with a fresh one. On failure the connection
// stays down and requests on it fail fast.
func (c *clientConnection) dial() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	select {
	case <-c.done:
		return errConnectionClosed
	default:
	}

	conn, err := c.parent.connector.Connect(c.endpoint, c.parent.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", c.endpoint, err)
	}

	c.conn = conn
	return nil
}

// close stops the reader and closes the net.Conn
func (c *clientConnection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
