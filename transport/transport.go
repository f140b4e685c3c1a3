// Package transport defines the narrow capability boundary between the
// node runtime and the underlying messaging transport. The transport
// itself (socket type, wire framing, queueing) is an external
// collaborator per the runtime's scope — this package only states what
// a receiver worker and a forwarder need from it.
package transport

import (
	"context"
	"time"

	"github.com/psi-streaming/nodeflow/message"
)

// Options configures how a Receiver or Forwarder opens its connection.
type Options struct {
	// Address is the fully qualified transport address to connect to.
	Address string
	// ReceiveTimeout bounds how long a single Receive call blocks before
	// returning a normal empty poll. node.NewManager sets 1000ms when
	// this is zero.
	ReceiveTimeout time.Duration
	// QueueSize is the transport-level socket queue length, independent
	// of the node's own bounded data queue.
	QueueSize int
}

// Receiver is the capability a receiver worker uses to pull raw frames
// off the transport. A Receive call that times out returns (nil, nil):
// a timeout is a normal empty poll, not an error.
type Receiver interface {
	Receive(ctx context.Context) (*message.Frame, error)
	Close() error
}

// ReceiverDialer opens a Receiver in pull mode against the given
// options. Concrete transports (ZMQ PULL sockets, message queues, etc.)
// implement this; it is what the node runtime actually depends on.
type ReceiverDialer interface {
	Dial(opts Options) (Receiver, error)
}

// Forwarder is the outbound counterpart used by forwarding/proxy
// processors to send frames downstream. Raw passthrough forwarding
// preserves the inbound frame byte-for-byte; a transformed outbound
// frame is reserialized by the caller before Forward is called.
type Forwarder interface {
	Forward(ctx context.Context, frame message.Frame) error
	Close() error
}

// ForwarderDialer opens a Forwarder in push mode against the given
// options.
type ForwarderDialer interface {
	Dial(opts Options) (Forwarder, error)
}
