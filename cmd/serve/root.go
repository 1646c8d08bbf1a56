package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValentinKolb/dArr/cmd/util"
	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start the dArr server",
		Long: util.WrapString(`Start the dArr server with the specified configuration.
The configuration can be set via command line flags or environment variables.
The format of the environment variables is DARR_<flag> (e.g. DARR_TIMEOUT=15)`),
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	flags := ServeCmd.PersistentFlags()

	flags.String("shards", "100=local", util.WrapString("Comma-separated list of shards to serve. Format: ID=TYPE where TYPE is one of: local, raft"))
	flags.String("engine", "hybrid", util.WrapString("The array engine backing every array (hybrid, mapped)"))
	flags.Int64("timeout", 5, util.WrapString("Timeout in seconds for raft proposals and transport writes"))
	flags.String("log-level", "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	// transport
	flags.String("endpoint", "0.0.0.0:8080", util.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/darr.sock, ...)"))
	flags.Int("workers-per-conn", 0, util.WrapString("Requests of one connection processed in parallel, 0 uses the number of CPUs (tcp and unix only)"))
	flags.Int("buffer-size", 0, util.WrapString("Size of the pooled read buffers in KB, 0 uses the transport default (tcp and unix only)"))
	flags.Int("transport-write-buffer", 0, util.WrapString("The size of the socket write buffer in KB, 0 keeps the OS default"))
	flags.Int("transport-read-buffer", 0, util.WrapString("The size of the socket read buffer in KB, 0 keeps the OS default"))
	flags.Bool("transport-tcp-nodelay", true, util.WrapString("Whether to enable TCP_NODELAY (tcp only)"))
	flags.Int("transport-tcp-keepalive", 0, util.WrapString("The keepalive interval in seconds, 0 disables it (tcp only)"))
	flags.Int("transport-tcp-linger", -1, util.WrapString("The linger time in seconds, negative keeps the OS default (tcp only)"))

	// raft
	flags.Int("rtt-millisecond", 100, util.WrapString("(raft) RTTMillisecond defines the average Round Trip Time (RTT) in milliseconds between two NodeHost instances"))
	flags.Int("snapshot-entries", 10, util.WrapString("(raft) SnapshotEntries defines how often the state machine should be snapshotted automatically, in applied Raft log entries. 0 disables automatic snapshots"))
	flags.Int("compaction-overhead", 5, util.WrapString("(raft) CompactionOverhead defines the number of log entries kept after a snapshot"))
	flags.String("data-dir", "data", util.WrapString("(raft) DataDir is the directory used for the raft log and the snapshots"))
	flags.String("replica-id", "", util.WrapString("(raft) ReplicaID is the unique name of this NodeHost instance (e.g. 'node-1')"))
	flags.String("cluster-members", "", util.WrapString("(raft) Comma-separated list of NodeHost addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))
	flags.Bool("stale-reads", false, util.WrapString("(raft) Serve reads from the local replica without a linearizable read index"))
}

// processConfig converts the flags and environment variables to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	shards, err := util.ParseShards(viper.GetString("shards"))
	if err != nil {
		return err
	}
	serveCmdConfig.Shards = shards

	serveCmdConfig.Engine = viper.GetString("engine")
	if _, err := server.EngineFactory(serveCmdConfig.Engine); err != nil {
		return err
	}
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint:       viper.GetString("endpoint"),
		WorkersPerConn: viper.GetInt("workers-per-conn"),
		BufferSize:     viper.GetInt("buffer-size") * 1024,
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
		},
	}

	serveCmdConfig.RTTMillisecond = viper.GetUint64("rtt-millisecond")
	serveCmdConfig.SnapshotEntries = viper.GetUint64("snapshot-entries")
	serveCmdConfig.CompactionOverhead = viper.GetUint64("compaction-overhead")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.StaleReads = viper.GetBool("stale-reads")

	if !serveCmdConfig.HasRemoteShard() {
		return nil
	}

	// raft shards need the identity of this node and the initial members
	id := viper.GetString("replica-id")
	if id == "" {
		return fmt.Errorf("replica-id is required for raft shards")
	}
	serveCmdConfig.ReplicaID = common.ReplicaIDFromName(id)

	members, err := util.ParseClusterMembers(viper.GetString("cluster-members"))
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return fmt.Errorf("cluster-members is required for raft shards")
	}
	if _, ok := members[serveCmdConfig.ReplicaID]; !ok {
		return fmt.Errorf("no address found for replica %s in cluster members", id)
	}
	serveCmdConfig.ClusterMembers = members

	return nil
}

// run starts the server and closes it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	t, err := util.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(*serveCmdConfig, t, s)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	errCh := make(chan error, 1)
	go func() { errCh <- serv.Serve() }()

	select {
	case err := <-errCh:
		_ = serv.Close()
		return err
	case s := <-sig:
		server.Logger.Infof("received %s, shutting down", s)
		if err := serv.Close(); err != nil {
			return err
		}
		return <-errCh
	}
}
