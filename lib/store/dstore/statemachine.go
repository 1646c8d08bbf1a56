package dstore

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/store/dstore/internal"
	"github.com/ValentinKolb/dArr/lib/store/registry"
	"github.com/ValentinKolb/dArr/lib/value"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// ArrayStateMachine is a state machine implementation for Dragonboat RAFT
type ArrayStateMachine struct {
	replicaID uint64
	shardID   uint64
	arrays    *registry.Registry // the actual data storage
	probe     array.IndexedArray // engine instance used for feature checks only
}

// CreateStateMachineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
// The factory pattern is used to enable the caller to pass an interchangeable array engine
func CreateStateMachineFactory(factory array.Factory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &ArrayStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			arrays:    registry.New(factory),
			probe:     factory(),
		}
	}
}

// Lookup handles read-only queries by mapping each Query operation to the corresponding Registry method.
func (fsm *ArrayStateMachine) Lookup(itf interface{}) (interface{}, error) {

	// try to parse Query into Query struct
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	switch q.Type {
	case internal.QueryTGet:
		return fsm.arrays.Get(q.Name, q.Index)
	case internal.QueryTLength:
		return fsm.arrays.Length(q.Name)
	case internal.QueryTIndices:
		return fsm.arrays.Indices(q.Name)
	case internal.QueryTInfo:
		return fsm.arrays.Info(q.Name)
	default:
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// result converts the outcome of a registry call into a raft entry result.
// Failures carry the RetCode as value and the message as data.
func result(ok bool, err error) sm.Result {
	if err != nil {
		se, _ := store.WrapError(err).(*store.Error)
		return sm.Result{Value: uint64(se.Code), Data: []byte(se.Msg)}
	}
	if ok {
		return sm.Result{Value: uint64(store.RetCSuccess), Data: []byte{1}}
	}
	return sm.Result{Value: uint64(store.RetCSuccess), Data: []byte{0}}
}

// Update handles write commands on the registry
// All write operations are serialized into []byte and are accessible via the entries struct
func (fsm *ArrayStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {

	// Nothing to do
	if len(entries) == 0 {
		return entries, nil
	}

	// Stats
	start := time.Now()

	var cmd internal.Command
	for idx, e := range entries {
		if len(e.Cmd) == 0 {
			entries[idx].Result = sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte("empty command ignored")}
			continue
		}
		if err := cmd.Deserialize(e.Cmd); err != nil {
			entries[idx].Result = sm.Result{Value: uint64(store.RetCInternalError), Data: []byte(fmt.Sprintf("failed to deserialize command: %v", err))}
			continue
		}

		// Check if the engine supports the operation
		feat, err := cmd.Type.ToFeature(cmd.Order)
		if err != nil {
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCInvalidOperation),
				Data:  []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type)),
			}
			continue
		}
		if feat != 0 && !fsm.probe.SupportsFeature(feat) {
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCUnsupportedOperation),
				Data:  []byte(fmt.Sprintf("%s operation is not supported", cmd.Type)),
			}
			continue
		}

		entries[idx].Result = fsm.apply(&cmd)
	}

	// Log if the update took long
	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("State machine took long to update. Batch updated %d entries, took %.2fms", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// apply executes a single decoded command
func (fsm *ArrayStateMachine) apply(cmd *internal.Command) sm.Result {
	switch cmd.Type {
	case internal.CommandTPut:
		v, err := value.UnmarshalBinary(cmd.Value)
		if err != nil {
			return sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte(err.Error())}
		}
		return result(true, fsm.arrays.Put(cmd.Name, cmd.Index, v))
	case internal.CommandTDelete:
		return result(fsm.arrays.Delete(cmd.Name, cmd.Index))
	case internal.CommandTSetLength:
		return result(true, fsm.arrays.SetLength(cmd.Name, cmd.Length))
	case internal.CommandTSort:
		return result(true, fsm.arrays.Sort(cmd.Name, cmd.Order))
	case internal.CommandTDrop:
		return result(fsm.arrays.Drop(cmd.Name))
	default:
		return sm.Result{
			Value: uint64(store.RetCInvalidOperation),
			Data:  []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type)),
		}
	}
}

// PrepareSnapshot captures the registry while no update is running. The
// captured image is written out by SaveSnapshot concurrently to new updates.
func (fsm *ArrayStateMachine) PrepareSnapshot() (interface{}, error) {
	var buf bytes.Buffer
	if err := fsm.arrays.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveSnapshot writes the image captured by PrepareSnapshot to the writer
func (fsm *ArrayStateMachine) SaveSnapshot(ctx interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	image, ok := ctx.([]byte)
	if !ok {
		return fmt.Errorf("invalid snapshot context type: %T", ctx)
	}
	_, err := writer.Write(image)
	return err
}

// RecoverFromSnapshot replaces all arrays with the content of the snapshot
func (fsm *ArrayStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	return fsm.arrays.Load(r)
}

// Close performs any necessary cleanup.
func (fsm *ArrayStateMachine) Close() error {
	fsm.arrays.Close()
	return nil
}
