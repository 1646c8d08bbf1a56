package unix

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer starts an echo server that prefixes every payload with its shard id
func startServer(t *testing.T) string {
	socket := filepath.Join(t.TempDir(), "darr.sock")

	server := NewUnixServerTransport()
	server.RegisterHandler(func(shardId uint64, req []byte) []byte {
		return append([]byte(fmt.Sprintf("%d:", shardId)), req...)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(common.ServerConfig{
			TimeoutSecond: 5,
			Transport:     common.ServerTransportConfig{Endpoint: socket, WorkersPerConn: 4},
		})
	}()
	require.Eventually(t, func() bool { return server.Addr() != nil }, 5*time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		require.NoError(t, server.Close())
		require.NoError(t, <-errCh)
	})
	return socket
}

func TestUnixRoundTrip(t *testing.T) {
	socket := startServer(t)

	client := NewUnixClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoints:              []string{socket},
			RetryCount:             1,
			ConnectionsPerEndpoint: 2,
		},
	}))
	defer client.Close()

	resp, err := client.Send(100, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "100:hello", string(resp))

	resp, err = client.Send(7, nil)
	require.NoError(t, err)
	assert.Equal(t, "7:", string(resp))
}

func TestUnixConcurrentRequests(t *testing.T) {
	socket := startServer(t)

	client := NewUnixClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{
		TimeoutSecond: 5,
		Transport:     common.ClientTransportConfig{Endpoints: []string{socket}},
	}))
	defer client.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				payload := fmt.Sprintf("g%d-i%d", g, i)
				resp, err := client.Send(uint64(g), []byte(payload))
				if assert.NoError(t, err) {
					assert.Equal(t, fmt.Sprintf("%d:%s", g, payload), string(resp))
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestUnixConnectFailure(t *testing.T) {
	client := NewUnixClientTransport()
	err := client.Connect(common.ClientConfig{
		TimeoutSecond: 1,
		Transport:     common.ClientTransportConfig{Endpoints: []string{filepath.Join(t.TempDir(), "missing.sock")}},
	})
	assert.Error(t, err)

	err = client.Connect(common.ClientConfig{})
	assert.Error(t, err)
}
