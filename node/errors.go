package node

import "errors"

// Sentinel errors for the node runtime. Workers
// never propagate these across goroutines — they are only ever
// returned by Manager and Proxy calls.
var (
	// ErrAlreadyRunning is returned by Start when the node is already
	// in the Running state.
	ErrAlreadyRunning = errors.New("node: already running")

	// ErrNotRunning names an operation that needs a running node. No
	// Manager or Proxy method in this package returns it: Stop and the
	// parameter and statistics calls succeed in every state.
	ErrNotRunning = errors.New("node: not running")

	// ErrStartupFailed is returned by Start when one or more workers
	// did not signal liveness within the startup timeout. The Manager
	// has already cleaned up before returning it.
	ErrStartupFailed = errors.New("node: startup failed: worker did not become live in time")

	// ErrInvalidParameter names a parameter not in the expected (name,
	// value) shape, or a reserved name carrying a value of the wrong
	// type. No function in this package returns it: SetParameters
	// queues updates without validating them, and the processor worker
	// only logs a reserved value that fails to decode.
	ErrInvalidParameter = errors.New("node: invalid parameter")

	// ErrIPCTimeout is returned by the out-of-process Proxy when a
	// call does not get a response within the configured IPC timeout.
	ErrIPCTimeout = errors.New("node: ipc call timed out")
)
