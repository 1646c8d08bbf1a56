// Package http implements the RPC transport over HTTP. Every message is the
// body of a POST request to /{shardId}, the response body is the encoded
// response message.
//
// The server additionally serves GET /metrics with all metrics of the process
// in the Prometheus text format, written by VictoriaMetrics/metrics. With the
// debug log level every request is logged with its status and duration.
//
// The client spreads requests round robin over the configured endpoints and
// moves on to the next endpoint when an attempt fails, up to RetryCount
// attempts. Endpoints without a scheme are treated as http://host:port.
package http
