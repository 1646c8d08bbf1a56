// Package cmd implements the command-line interface of dArr. It provides a
// hierarchical command structure for running the server and for working with
// the arrays of a running server as a client.
//
// The package is organized into several subpackages:
//
//   - arr: Commands for array operations (put, get, sort, diff, perf, ...)
//   - serve: Command for starting and configuring the dArr server
//   - util: Shared flag, configuration and parsing helpers (internal use)
//
// Every flag can also be set as an environment variable DARR_<FLAG>, with
// dashes replaced by underscores. See darr --help for a list of all commands.
package cmd
