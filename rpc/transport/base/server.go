package base

import (
	"errors"
	"fmt"
	"io"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector  IServerConnector
	handler    transport.ServerHandleFunc
	config     common.ServerConfig
	bufferSize int
	workers    int
	bufferPool sync.Pool
	metrics    *transport.Metrics

	mu       sync.Mutex // guards listener
	listener net.Listener
	closed   atomic.Bool
	conns    *xsync.MapOf[net.Conn, struct{}]
	active   sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport. bufferSize is the
// default size of the pooled read buffers, ServerConfig.Transport.BufferSize
// overrides it.
func NewBaseServerTransport(connector IServerConnector, bufferSize int) transport.IRPCServerTransport {
	return &serverTransport{
		connector:  connector,
		bufferSize: bufferSize,
		metrics:    transport.NewMetrics("server", connector.GetName()),
		conns:      xsync.NewMapOf[net.Conn, struct{}](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	if config.Transport.BufferSize > 0 {
		t.bufferSize = config.Transport.BufferSize
	}
	t.workers = config.Transport.WorkersPerConn
	if t.workers < 1 {
		t.workers = runtime.NumCPU()
	}
	size := t.bufferSize
	t.bufferPool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	t.mu.Lock()
	if t.closed.Load() {
		t.mu.Unlock()
		_ = listener.Close()
		return nil
	}
	t.listener = listener
	t.mu.Unlock()

	transport.Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), listener.Addr(), t.workers)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				t.active.Wait()
				return nil
			}
			transport.Logger.Errorf("Accept error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, config); err != nil {
			transport.Logger.Errorf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
			_ = conn.Close()
			continue
		}

		t.conns.Store(conn, struct{}{})
		if t.closed.Load() {
			// Close already ran over the open connections
			_ = conn.Close()
		}
		t.active.Add(1)
		go func() {
			defer t.active.Done()
			defer t.conns.Delete(conn)
			t.handleConnection(conn)
		}()
	}
}

func (t *serverTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *serverTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Swap(true) {
		return nil
	}

	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}
	t.conns.Range(func(conn net.Conn, _ struct{}) bool {
		_ = conn.Close()
		return true
	})
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection serves the requests of one connection until it is closed.
// Up to t.workers requests are processed in parallel, responses are written
// as they complete and carry the request id of their request.
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer conn.Close()

	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// counting semaphore bounding the workers of this connection
	slots := make(chan struct{}, t.workers)
	var workers sync.WaitGroup
	var writeMu sync.Mutex

	respond := func(bufp *[]byte, h frameHeader, data []byte) {
		defer func() {
			t.bufferPool.Put(bufp)
			<-slots
			workers.Done()
		}()

		start := time.Now()
		resp := t.handler(h.shardID, data)
		transport.Logger.Debugf("Processed request %d for shard %d in %s", h.requestID, h.shardID, time.Since(start))

		writeMu.Lock()
		defer writeMu.Unlock()

		if timeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				transport.Logger.Errorf("Failed to set write deadline: %v", err)
				t.metrics.Observe(start, err)
				return
			}
		}
		err := writeFrame(conn, h.shardID, h.requestID, resp)
		if err != nil {
			transport.Logger.Errorf("Failed to write response for request %d: %v", h.requestID, err)
		}
		t.metrics.Observe(start, err)
	}

read:
	for {
		bufp := t.bufferPool.Get().(*[]byte)
		h, data, err := readFrame(conn, *bufp)
		if err != nil {
			t.bufferPool.Put(bufp)
			switch {
			case err == io.EOF:
				transport.Logger.Debugf("Connection closed by client %s", conn.RemoteAddr())
			case t.closed.Load():
			default:
				transport.Logger.Errorf("Error reading request from %s: %v", conn.RemoteAddr(), err)
			}
			break read
		}

		slots <- struct{}{}
		workers.Add(1)
		go respond(bufp, h, data)
	}

	// responses of requests already read are still written
	workers.Wait()
}
