// Package node implements the concurrent receive/process pipeline at
// the center of a stream-processing node: the bounded cross-worker
// queues, the receiver and processor workers, their supervision by a
// Manager, and the process-level parameter policy.
package node

import (
	"github.com/psi-streaming/nodeflow/message"
)

// Processor is the collaborator that does the actual work on a
// message stream. It is supplied by whoever embeds the node runtime
// (an HDF5 writer, an LZ4 compressor, a forwarding filter, ...); the
// runtime only ever calls it through this contract.
type Processor interface {
	Start() error
	Stop() error
	Process(msg *message.Message) error
	SetParameter(name string, value interface{}) error
	Describe() string
	CurrentParameters() map[string]interface{}
}

// Resetter is an optional capability a Processor may implement to
// customize Manager.Reset. Processors that don't implement it get the
// default no-op behavior.
type Resetter interface {
	Reset() error
}

// Reserved process-level parameter names, consumed by the processor
// worker itself rather than forwarded to Processor.SetParameter.
const (
	ParamProcessUID = "process_uid"
	ParamProcessGID = "process_gid"
	ParamNMessages  = "n_messages"
)

// Parameter is a single (name, value) update flowing through the
// parameter queue.
type Parameter struct {
	Name  string
	Value interface{}
}
