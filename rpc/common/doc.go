// Package common provides core data structures and utilities shared across
// the RPC client, server and transports. It defines the protocol message,
// the configuration structures and the logger setup.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication, used for requests
//     and responses alike. Values travel in their value.MarshalBinary encoding,
//     errors as message plus store.RetCode so that clients can rebuild a
//     *store.Error. Factory functions exist for every request and response.
//
//   - MessageType: Enumeration of the array operations plus the success and
//     error control messages.
//
//   - ServerConfig: Configuration for server nodes, including RAFT parameters,
//     storage settings, the array engine and the shards to serve. Provides
//     conversions to the Dragonboat configuration structs.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation that integrates with Dragonboat's
//     logging system while providing consistent formatting across the application.
package common
