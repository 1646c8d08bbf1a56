// Package unix provides the Unix domain socket flavor of the stream transport
// in package base, for clients on the same machine as the server. The server
// endpoint is a socket path, a stale socket file at that path is removed
// before listening.
//
// Read buffers of the server default to 64 KB.
package unix
