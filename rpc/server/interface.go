package server

import (
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters.
// It translates decoded requests into calls on a store.IStore.
type IRPCServerAdapter interface {
	// Handle executes req against store and returns the response.
	// Errors are reported inside the response, never as a nil response.
	Handle(req *common.Message, store store.IStore) (resp *common.Message)
}
