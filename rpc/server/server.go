package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/engines/hybrid"
	"github.com/ValentinKolb/dArr/lib/array/engines/mapped"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/store/dstore"
	"github.com/ValentinKolb/dArr/lib/store/lstore"
	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/serializer"
	"github.com/ValentinKolb/dArr/rpc/transport"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the store it encapsulates and the adapter
// that handles requests for the store
type serverShard struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// Server serves the shards of one node over a transport
type Server struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	nodeHost   *dragonboat.NodeHost
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *Server {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &Server{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

// EngineFactory returns the factory of the named array engine (hybrid, mapped).
// The empty name selects hybrid.
func EngineFactory(name string) (array.Factory, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(array.ImplHybrid):
		return func() array.IndexedArray { return hybrid.NewHybridArray(nil) }, nil
	case string(array.ImplMapped):
		return mapped.NewMappedArray, nil
	default:
		return nil, fmt.Errorf("invalid engine %q, must be one of %s, %s", name, array.ImplHybrid, array.ImplMapped)
	}
}

// handle decodes a request, routes it to the shard and encodes the response
func (s *Server) handle(shardId uint64, req []byte) []byte {
	var resp *common.Message

	var msg common.Message
	if shard, ok := s.shards.Load(shardId); !ok {
		resp = common.NewErrorResponse(fmt.Sprintf("shard %d not found", shardId))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		resp = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		resp = shard.Adapter.Handle(&msg, shard.Store)
	}

	data, err := s.serializer.Serialize(*resp)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		data, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return data
}

func (s *Server) init() error {
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	factory, err := EngineFactory(s.config.Engine)
	if err != nil {
		return err
	}

	// Only create the NodeHost if we have remote shards
	if s.config.HasRemoteShard() {
		s.nodeHost, err = dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	for _, shardConfig := range s.config.Shards {
		if _, exists := s.shards.Load(shardConfig.ShardID); exists {
			return fmt.Errorf("shard %d is configured twice", shardConfig.ShardID)
		}

		switch shardConfig.Type {
		case common.ShardTypeLocalIStore:
			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:   lstore.NewLocalStore(factory),
				Adapter: NewIStoreServerAdapter(),
			})
			Logger.Infof("created local store for shard %d", shardConfig.ShardID)

		case common.ShardTypeRemoteIStore:
			err := s.nodeHost.StartConcurrentReplica(
				s.config.ClusterMembers,
				false,
				dstore.CreateStateMachineFactory(factory),
				s.config.ToDragonboatConfig(shardConfig.ShardID),
			)
			if err != nil {
				return fmt.Errorf("failed to start shard %d: %w", shardConfig.ShardID, err)
			}
			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:   dstore.NewDistributedStore(s.nodeHost, shardConfig.ShardID, timeout, s.config.StaleReads),
				Adapter: NewIStoreServerAdapter(),
			})
			Logger.Infof("created raft store for shard %d", shardConfig.ShardID)

		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("dArr setup completed successfully")

	s.transport.RegisterHandler(s.handle)
	return nil
}

// Serve initializes the shards and serves requests until Close is called
func (s *Server) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close stops the transport and the Raft node host
func (s *Server) Close() error {
	err := s.transport.Close()
	if s.nodeHost != nil {
		s.nodeHost.Close()
	}
	return err
}
