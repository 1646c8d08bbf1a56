package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/serializer"
	"github.com/ValentinKolb/dArr/rpc/transport"
	"github.com/ValentinKolb/dArr/rpc/transport/http"
	"github.com/ValentinKolb/dArr/rpc/transport/tcp"
	"github.com/ValentinKolb/dArr/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by the cli
	EnvPrefix = "darr"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads the .env files and makes viper read DARR_* variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Client side
// --------------------------------------------------------------------------

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Int("timeout", 10, WrapString("The timeout in seconds of the client"))
	flags.Int("shard", 100, WrapString("ID of the shard to connect to"))
	flags.String("transport-endpoints", "localhost:8080", WrapString("The address of the dArr server. For transports that support load balancing, multiple endpoints can be specified as a comma-separated list"))
	flags.Int("transport-conn-per-endpoint", 1, WrapString("Simultaneous connections per endpoint, for the tcp and unix transport"))
	flags.Int("transport-retries", 3, WrapString("How many times to try a request"))
	flags.Int("transport-write-buffer", 512, WrapString("The size of the socket write buffer in KB (ignored for http)"))
	flags.Int("transport-read-buffer", 512, WrapString("The size of the socket read buffer in KB (ignored for http)"))
	flags.Bool("transport-tcp-nodelay", true, WrapString("Whether to enable TCP_NODELAY (tcp only)"))
	flags.Int("transport-tcp-keepalive", 0, WrapString("The keepalive interval in seconds, 0 disables it (tcp only)"))
	flags.Int("transport-tcp-linger", -1, WrapString("The linger time in seconds, negative keeps the OS default (tcp only)"))
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond: viper.GetInt("timeout"),
		Transport: common.ClientTransportConfig{
			Endpoints:              SplitList(viper.GetString("transport-endpoints")),
			RetryCount:             viper.GetInt("transport-retries"),
			ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
			},
		},
	}
}

// GetShardID retrieves the configured shard ID
func GetShardID() uint64 {
	return viper.GetUint64("shard")
}

// GetSerializer creates the serializer named by the serializer flag
func GetSerializer() (serializer.IRPCSerializer, error) {
	switch name := viper.GetString("serializer"); name {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "gob":
		return serializer.NewGOBSerializer(), nil
	case "binary":
		return serializer.NewBinarySerializer(), nil
	case "cbor":
		return serializer.NewCBORSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
}

// GetTransport creates the client transport named by the transport flag
func GetTransport() (transport.IRPCClientTransport, error) {
	switch name := viper.GetString("transport"); name {
	case "http":
		return http.NewHttpClientTransport(), nil
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// GetServerTransport creates the server transport named by the transport flag
func GetServerTransport() (transport.IRPCServerTransport, error) {
	switch name := viper.GetString("transport"); name {
	case "http":
		return http.NewHttpServerTransport(), nil
	case "tcp":
		return tcp.NewTCPServerTransport(), nil
	case "unix":
		return unix.NewUnixServerTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// --------------------------------------------------------------------------
// Parsing
// --------------------------------------------------------------------------

// SplitList splits a comma separated list and drops empty entries
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseShards parses a shard list like "100=local,200=raft"
func ParseShards(s string) ([]common.ServerShard, error) {
	var shards []common.ServerShard
	for _, def := range SplitList(s) {
		id, kind, ok := strings.Cut(def, "=")
		if !ok {
			return nil, fmt.Errorf("invalid shard format: %s (expected ID=TYPE)", def)
		}
		shardID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shard ID %s: %w", id, err)
		}
		shardType, err := common.ParseShardType(kind)
		if err != nil {
			return nil, err
		}
		shards = append(shards, common.ServerShard{ShardID: shardID, Type: shardType})
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("at least one shard is required")
	}
	return shards, nil
}

// ParseClusterMembers parses "node-1=host:port,node-2=host:port" into the
// replica id keyed address map used by Dragonboat
func ParseClusterMembers(s string) (map[uint64]string, error) {
	members := make(map[uint64]string)
	for _, member := range SplitList(s) {
		name, addr, ok := strings.Cut(member, "=")
		name, addr = strings.TrimSpace(name), strings.TrimSpace(addr)
		if !ok || name == "" || addr == "" {
			return nil, fmt.Errorf("invalid cluster member format: %s (expected NAME=address)", member)
		}
		id := common.ReplicaIDFromName(name)
		if _, dup := members[id]; dup {
			return nil, fmt.Errorf("cluster member %s is listed twice", name)
		}
		members[id] = addr
	}
	return members, nil
}
