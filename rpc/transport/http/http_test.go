package http

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport(t *testing.T) {
	server := NewHttpServerTransport()
	server.RegisterHandler(func(shardId uint64, req []byte) []byte {
		if shardId != 100 {
			return []byte("wrong shard")
		}
		return bytes.Repeat(req, 2)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(common.ServerConfig{
			LogLevel:  "debug",
			Transport: common.ServerTransportConfig{Endpoint: "127.0.0.1:0"},
		})
	}()
	require.Eventually(t, func() bool { return server.Addr() != nil }, 5*time.Second, 10*time.Millisecond)
	addr := server.Addr().String()

	client := NewHttpClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{
		TimeoutSecond: 5,
		Transport:     common.ClientTransportConfig{Endpoints: []string{addr}, RetryCount: 1},
	}))
	defer client.Close()

	resp, err := client.Send(100, []byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, "abab", string(resp))

	// invalid shard ids are rejected by the server
	httpResp, err := http.Post("http://"+addr+"/not-a-number", "application/octet-stream", nil)
	require.NoError(t, err)
	_ = httpResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, httpResp.StatusCode)

	// metrics are served next to the rpc endpoint
	httpResp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(httpResp.Body)
	_ = httpResp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `darr_rpc_requests_total{side="server",transport="http"}`))

	require.NoError(t, server.Close())
	require.NoError(t, <-errCh)

	_, err = client.Send(100, []byte("ab"))
	assert.Error(t, err)
}
