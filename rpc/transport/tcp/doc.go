// Package tcp provides the tcp flavor of the stream transport in package base.
// It adds dialing and listening on tcp addresses and applies the socket
// options of common.SocketConf and common.TCPConf to every connection, on the
// client and on the server side.
//
// Read buffers of the server default to 512 KB.
package tcp
