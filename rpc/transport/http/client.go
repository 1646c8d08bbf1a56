package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{
		metrics: transport.NewMetrics("client", "http"),
	}
}

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    atomic.Uint32
	retryCount int
	metrics    *transport.Metrics
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	parsedURLs := make([]*url.URL, len(config.Transport.Endpoints))
	for i, endpoint := range config.Transport.Endpoints {
		// endpoints may be given as host:port
		if !strings.Contains(endpoint, "://") {
			endpoint = "http://" + endpoint
		}
		parsedURL, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
		if err != nil {
			return fmt.Errorf("invalid endpoint %q: %w", config.Transport.Endpoints[i], err)
		}
		parsedURLs[i] = parsedURL
	}

	perHost := max(1, config.Transport.ConnectionsPerEndpoint)
	t.client = &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        perHost * len(parsedURLs),
			MaxIdleConnsPerHost: perHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	t.serverURLs = parsedURLs
	t.counter.Store(0)
	t.retryCount = max(1, config.Transport.RetryCount)
	return nil
}

func (t *httpClientTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	if t.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < t.retryCount; attempt++ {
		// every attempt moves on to the next server
		idx := t.counter.Add(1) % uint32(len(t.serverURLs))
		resp, err := t.post(t.serverURLs[idx].JoinPath(strconv.FormatUint(shardId, 10)).String(), req)
		if err == nil {
			t.metrics.Observe(start, nil)
			return resp, nil
		}
		lastErr = err
		transport.Logger.Debugf("Request attempt %d/%d failed: %v", attempt+1, t.retryCount, err)
	}

	t.metrics.Observe(start, lastErr)
	return nil, lastErr
}

func (t *httpClientTransport) Close() error {
	if t.client != nil {
		t.client.CloseIdleConnections()
	}
	t.client = nil
	t.serverURLs = nil
	return nil
}

// post sends one request and returns the body of a 200 response
func (t *httpClientTransport) post(requestURL string, req []byte) ([]byte, error) {
	httpResponse, err := t.client.Post(requestURL, "application/octet-stream", bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			transport.Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}
	return io.ReadAll(httpResponse.Body)
}
