package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dArr/cmd/arr"
	"github.com/ValentinKolb/dArr/cmd/serve"
	"github.com/ValentinKolb/dArr/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "darr",
		Short: "sparse array store",
		Long: fmt.Sprintf(`dArr (v%s)

A store for large sparse arrays written in Go. Each array switches between
a dense vector and a sparse map as it fills, shards can be replicated with
RAFT for linearizability and fault tolerance.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dArr",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dArr v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(arr.ArrayCommands)
	RootCmd.AddCommand(versionCmd)

	RootCmd.PersistentFlags().String("serializer", "json", util.WrapString("serializer to use (json, gob, binary, cbor)"))
	RootCmd.PersistentFlags().String("transport", "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
