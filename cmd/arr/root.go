package arr

import (
	"github.com/ValentinKolb/dArr/cmd/util"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.IStore

	// ArrayCommands represents the array command group
	ArrayCommands = &cobra.Command{
		Use:               "arr",
		Short:             "Perform array store operations",
		PersistentPreRunE: setupArrayClient,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupRPCClientFlags(ArrayCommands)

	ArrayCommands.AddCommand(putCmd)
	ArrayCommands.AddCommand(getCmd)
	ArrayCommands.AddCommand(delCmd)
	ArrayCommands.AddCommand(lenCmd)
	ArrayCommands.AddCommand(setLenCmd)
	ArrayCommands.AddCommand(sortCmd)
	ArrayCommands.AddCommand(indicesCmd)
	ArrayCommands.AddCommand(dumpCmd)
	ArrayCommands.AddCommand(dropCmd)
	ArrayCommands.AddCommand(infoCmd)
	ArrayCommands.AddCommand(diffCmd)
	ArrayCommands.AddCommand(perfTestCmd)
}

// setupArrayClient initializes the RPC store client
func setupArrayClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcStore, err = client.NewRPCStore(util.GetShardID(), *util.GetClientConfig(), t, s)
	return err
}
