package common

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/lni/dragonboat/v4/config"
)

// --------------------------------------------------------------------------
// helper functions for to interface with Dragonboat (for the server util)
// --------------------------------------------------------------------------

// Dragonboat uses RTT (Round Trip Time) to determine the timing of elections and heartbeats.
// These default values are selected according to the RAFT Paper
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// ToDragonboatConfig converts the ServerConfig to Dragonboat Config
func (c *ServerConfig) ToDragonboatConfig(shardId uint64) config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            shardId,
		ElectionRTT:        electionRTTFactor,  // = c.RTTMillisecond * 10
		HeartbeatRTT:       heartbeatRTTFactor, // = c.RTTMillisecond * 2
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
		MaxInMemLogSize:    0,
	}
}

// ToNodeHostConfig creates a NodeHostConfig for Dragonboat
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// ReplicaIDFromName maps a human readable replica name (e.g. "node-1") to the
// numeric id Dragonboat works with. The id is never 0, Dragonboat rejects it.
func ReplicaIDFromName(name string) uint64 {
	id := xxhash.Sum64String(name)
	if id == 0 {
		id = 1
	}
	return id
}

// --------------------------------------------------------------------------
// Transport configuration
// --------------------------------------------------------------------------

// SocketConf holds the socket buffer sizes in bytes, zero keeps the OS default
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds options that only apply to tcp connections
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int // negative keeps the OS default
}

// ServerTransportConfig configures the listening side of a transport
type ServerTransportConfig struct {
	Endpoint string

	// WorkersPerConn limits the requests of one connection processed in parallel
	WorkersPerConn int
	// BufferSize is the size of the pooled read buffers of stream transports
	BufferSize int

	SocketConf
	TCPConf
}

// ClientTransportConfig configures the connecting side of a transport
type ClientTransportConfig struct {
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int

	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type ServerShardType string

const (
	ShardTypeLocalIStore  ServerShardType = "local"
	ShardTypeRemoteIStore ServerShardType = "raft"
)

// ParseShardType parses the type part of a shard definition (id=type)
func ParseShardType(s string) (ServerShardType, error) {
	switch t := ServerShardType(strings.ToLower(strings.TrimSpace(s))); t {
	case ShardTypeLocalIStore, ShardTypeRemoteIStore:
		return t, nil
	default:
		return "", fmt.Errorf("invalid shard type %q, must be one of %s, %s", s, ShardTypeLocalIStore, ShardTypeRemoteIStore)
	}
}

type ServerShard struct {
	// ShardID is the ID of the shard
	ShardID uint64
	// Type selects the store implementation serving the shard
	Type ServerShardType
}

// ServerConfig holds all configuration parameters for the RAFT cluster.
type ServerConfig struct {
	// whether to start the server in single node mode or in a cluster
	Shards []ServerShard

	// Dragenboat parameters
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	DataDir            string
	ReplicaID          uint64
	ClusterMembers     map[uint64]string

	// array store parameters
	Engine        string // array engine, hybrid or mapped
	TimeoutSecond int64
	StaleReads    bool // serve raft reads from the local replica

	// Transport settings
	Transport ServerTransportConfig

	// Logging configuration
	LogLevel string
}

// HasRemoteShard checks if the configuration contains any remote shards
func (c *ServerConfig) HasRemoteShard() bool {
	for _, shard := range c.Shards {
		if shard.Type == ShardTypeRemoteIStore {
			return true
		}
	}
	return false
}

// String renders the configuration for the startup log
func (c *ServerConfig) String() string {
	var p printer

	p.section("RPC Server")
	p.field("Endpoint", c.Transport.Endpoint)
	p.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	p.field("Workers Per Conn", strconv.Itoa(c.Transport.WorkersPerConn))
	p.field("Buffer Size", fmt.Sprintf("%d bytes", c.Transport.BufferSize))
	p.field("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	p.field("Log Level", c.LogLevel)
	p.field("Engine", c.Engine)

	p.section("Shards")
	for _, shard := range c.Shards {
		p.field(strconv.FormatUint(shard.ShardID, 10), string(shard.Type))
	}

	if !c.HasRemoteShard() {
		return p.String()
	}

	p.section("Raft")
	p.field("Replica ID", strconv.FormatUint(c.ReplicaID, 10))
	p.field("Raft Address", c.ClusterMembers[c.ReplicaID])
	p.field("RTT", fmt.Sprintf("%d ms", c.RTTMillisecond))
	p.field("Election RTT", fmt.Sprintf("%d ms", c.RTTMillisecond*electionRTTFactor))
	p.field("Heartbeat RTT", fmt.Sprintf("%d ms", c.RTTMillisecond*heartbeatRTTFactor))
	p.field("Snapshot Entries", strconv.FormatUint(c.SnapshotEntries, 10))
	p.field("Compaction Overhead", strconv.FormatUint(c.CompactionOverhead, 10))
	p.field("Stale Reads", strconv.FormatBool(c.StaleReads))
	p.field("Data Directory", c.DataDir)

	p.section("Cluster Members")
	ids := make([]uint64, 0, len(c.ClusterMembers))
	for id := range c.ClusterMembers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p.field(strconv.FormatUint(id, 10), c.ClusterMembers[id])
	}

	return p.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String renders the configuration for the cli output
func (c *ClientConfig) String() string {
	var p printer

	p.section("Client")
	p.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	p.field("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	p.field("Conns Per Endpoint", strconv.Itoa(max(1, c.Transport.ConnectionsPerEndpoint)))
	p.field("Endpoints", strings.Join(c.Transport.Endpoints, ", "))

	return p.String()
}

// printer lays out configuration sections as aligned "name: value" lines
type printer struct {
	strings.Builder
}

func (p *printer) section(title string) {
	fmt.Fprintf(p, "\n%s\n", strings.ToUpper(title))
}

func (p *printer) field(name, value string) {
	fmt.Fprintf(p, "  %-20s: %s\n", name, value)
}
