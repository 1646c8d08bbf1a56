package dstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/store/dstore/internal"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

var (
	retries = 5
	log     = logger.GetLogger("dstore")
)

// storeImpl serves store.IStore from a raft shard of a Dragonboat NodeHost.
// Writes are proposals, reads are queries against the state machine.
type storeImpl struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	timeout time.Duration
	stale   bool // serve reads with StaleRead instead of SyncRead
}

// NewDistributedStore creates a new distributed store instance which uses raft consensus to ensure strict linearizability
// across multiple nodes. With staleReads set, reads are answered from the local replica without
// a read index round trip and may miss the latest writes.
func NewDistributedStore(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration, staleReads bool) store.IStore {
	cs := nh.GetNoOPSession(shardID)
	return &storeImpl{
		nh:      nh,
		shardID: shardID,
		cs:      cs,
		timeout: timeout,
		stale:   staleReads,
	}
}

// --------------------------------------------------------------------------
// Raft round trips
// --------------------------------------------------------------------------

// busyRetry runs op until it does not fail with ErrSystemBusy, at most
// retries times, pausing a tenth of the timeout between the attempts
func busyRetry[R any](s *storeImpl, what string, op func() (R, error)) (R, error) {
	for i := 1; i <= retries; i++ {
		res, err := op()
		if !errors.Is(err, dragonboat.ErrSystemBusy) {
			return res, err
		}
		log.Infof("%s on shard %d: system busy, retrying (%d/%d)", what, s.shardID, i, retries)
		time.Sleep(s.timeout / 10)
	}
	var zero R
	return zero, store.NewError(store.RetCInternalError, fmt.Sprintf("%s: shard %d stayed busy", what, s.shardID))
}

// write proposes cmd and returns the result data. A non success result
// value is the RetCode of the failed command, its data the message.
func (s *storeImpl) write(cmd internal.Command) ([]byte, error) {
	res, err := busyRetry(s, "propose", func() (sm.Result, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.nh.SyncPropose(ctx, s.cs, cmd.Serialize())
	})
	if err != nil {
		return nil, store.WrapError(err)
	}
	if res.Value != uint64(store.RetCSuccess) {
		return nil, store.NewError(store.RetCode(res.Value), string(res.Data))
	}
	return res.Data, nil
}

// writeBool sends a command whose result reports a boolean outcome
func (s *storeImpl) writeBool(cmd internal.Command) (bool, error) {
	data, err := s.write(cmd)
	if err != nil {
		return false, err
	}
	return len(data) == 1 && data[0] == 1, nil
}

// read queries the state machine and asserts the result to R. Linearizable
// reads go through SyncRead, stale reads are served by the local replica.
func read[R any](s *storeImpl, q internal.Query, stale bool) (R, error) {
	var zero R
	res, err := busyRetry(s, "read", func() (interface{}, error) {
		if stale {
			return s.nh.StaleRead(s.shardID, q)
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.nh.SyncRead(ctx, s.shardID, q)
	})
	if err != nil {
		return zero, store.WrapError(err)
	}

	casted, ok := res.(R)
	if !ok {
		return zero, store.NewError(store.RetCInternalError,
			fmt.Sprintf("unexpected type: received %T, expected %T", res, zero))
	}
	return casted, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docs see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(name string, index uint32, v value.Value) error {
	if !array.IsArrayIndex(uint64(index)) {
		return store.NewError(store.RetCInvalidOperation, fmt.Sprintf("%d is not an array index", index))
	}
	data, err := value.MarshalBinary(v)
	if err != nil {
		return store.WrapError(err)
	}
	_, err = s.write(internal.Command{
		Type:  internal.CommandTPut,
		Name:  name,
		Index: index,
		Value: data,
	})
	return err
}

func (s *storeImpl) Get(name string, index uint32) (value.Value, error) {
	v, err := read[value.Value](s, internal.Query{
		Type:  internal.QueryTGet,
		Name:  name,
		Index: index,
	}, s.stale)
	if err != nil {
		return value.Undefined, err
	}
	return v, nil
}

func (s *storeImpl) Delete(name string, index uint32) (bool, error) {
	return s.writeBool(internal.Command{
		Type:  internal.CommandTDelete,
		Name:  name,
		Index: index,
	})
}

func (s *storeImpl) Length(name string) (uint32, error) {
	return read[uint32](s, internal.Query{
		Type: internal.QueryTLength,
		Name: name,
	}, s.stale)
}

func (s *storeImpl) SetLength(name string, length float64) error {
	_, err := s.write(internal.Command{
		Type:   internal.CommandTSetLength,
		Name:   name,
		Length: length,
	})
	return err
}

func (s *storeImpl) Sort(name string, order array.SortOrder) error {
	_, err := s.write(internal.Command{
		Type:  internal.CommandTSort,
		Name:  name,
		Order: order,
	})
	return err
}

func (s *storeImpl) Indices(name string) ([]uint32, error) {
	return read[[]uint32](s, internal.Query{
		Type: internal.QueryTIndices,
		Name: name,
	}, s.stale)
}

func (s *storeImpl) Drop(name string) (bool, error) {
	return s.writeBool(internal.Command{
		Type: internal.CommandTDrop,
		Name: name,
	})
}

func (s *storeImpl) Info(name string) (array.ArrayInfo, error) {
	return read[array.ArrayInfo](
		s,
		internal.Query{
			Type: internal.QueryTInfo,
			Name: name,
		},
		true, // statistics only, never worth a read index
	)
}
