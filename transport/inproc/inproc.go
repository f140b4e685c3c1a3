// Package inproc is a local, in-process push/pull transport used by
// tests and by single-binary deployments that don't need a real
// network socket between node and upstream. It is the reference
// implementation of transport.Receiver/transport.Forwarder, backed by
// a bounded channel.
package inproc

import (
	"context"
	"fmt"
	"sync"

	"github.com/psi-streaming/nodeflow/message"
	"github.com/psi-streaming/nodeflow/transport"
)

// Socket is a bounded, many-producer/many-consumer frame channel. One
// Socket's Receiver end and Forwarder end form a PUSH/PULL pair: frames
// written with Forward are read back with Receive, in order.
type Socket struct {
	ch chan message.Frame

	closeOnce sync.Once
	closed    chan struct{}
}

// NewSocket returns a Socket with the given transport-level queue size.
func NewSocket(queueSize int) *Socket {
	if queueSize <= 0 {
		queueSize = 1
	}

	return &Socket{
		ch:     make(chan message.Frame, queueSize),
		closed: make(chan struct{}),
	}
}

// Receive implements transport.Receiver. It blocks until a frame is
// available, the context is canceled, or the socket is closed; the
// last two return a nil frame and nil error — a normal empty poll,
// matching the timeout semantics of a real PULL socket.
func (s *Socket) Receive(ctx context.Context) (*message.Frame, error) {
	select {
	case frame, ok := <-s.ch:
		if !ok {
			return nil, nil
		}
		return &frame, nil
	case <-s.closed:
		return nil, nil
	case <-ctx.Done():
		return nil, nil
	}
}

// Forward implements transport.Forwarder. It blocks when the socket's
// queue is full — the intended backpressure point.
func (s *Socket) Forward(ctx context.Context, frame message.Frame) error {
	select {
	case s.ch <- frame:
		return nil
	case <-s.closed:
		return fmt.Errorf("inproc: socket closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the socket closed. Idempotent.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// receiverDialer and forwarderDialer adapt a fixed Socket to the
// transport.ReceiverDialer / transport.ForwarderDialer interfaces,
// ignoring the dial options — the in-process transport has no address
// to connect to.
type receiverDialer struct{ socket *Socket }

// NewReceiverDialer returns a transport.ReceiverDialer bound to socket.
func NewReceiverDialer(socket *Socket) transport.ReceiverDialer {
	return &receiverDialer{socket: socket}
}

// receiverEnd is the Receiver a receiverDialer hands out. Closing it
// releases only that end; the shared Socket stays open, so the dialer
// can be dialed again when a node restarts.
type receiverEnd struct{ *Socket }

func (receiverEnd) Close() error { return nil }

func (d *receiverDialer) Dial(transport.Options) (transport.Receiver, error) {
	return receiverEnd{d.socket}, nil
}

type forwarderDialer struct{ socket *Socket }

// NewForwarderDialer returns a transport.ForwarderDialer bound to socket.
func NewForwarderDialer(socket *Socket) transport.ForwarderDialer {
	return &forwarderDialer{socket: socket}
}

func (d *forwarderDialer) Dial(transport.Options) (transport.Forwarder, error) {
	return d.socket, nil
}
