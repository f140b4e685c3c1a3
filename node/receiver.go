package node

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/psi-streaming/nodeflow/message"
	"github.com/psi-streaming/nodeflow/transport"
)

// receiverWorker pulls frames off one transport connection, decodes
// them, and pushes them onto the shared data queue.
type receiverWorker struct {
	id       int
	dialer   transport.ReceiverDialer
	opts     transport.Options
	registry *message.Registry
	rawMode  bool
	queue    *dataQueue
	live     *liveFlag
	logger   logrus.FieldLogger
	tel      *telemetry
}

// run blocks until Clear()'d, an unrecoverable transport error occurs,
// or ctx is canceled. It always closes the transport connection before
// returning.
func (w *receiverWorker) run(ctx context.Context, done <-chan struct{}) {
	log := w.logger.WithField("receiver", w.id)

	recv, err := w.dialer.Dial(w.opts)
	if err != nil {
		log.WithError(err).Error("receiver failed to dial transport")
		w.live.Clear()
		return
	}
	defer recv.Close()

	w.live.Set()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		default:
		}

		if !w.live.IsSet() {
			return
		}

		frame, err := recv.Receive(ctx)
		if err != nil {
			log.WithError(err).Error("receiver transport failure, stopping")
			w.live.Clear()
			return
		}
		if frame == nil {
			// normal empty poll
			continue
		}

		var msg *message.Message
		if w.rawMode {
			msg = w.registry.DecodeRaw(*frame)
		} else {
			msg = w.registry.Decode(*frame)
		}
		if msg == nil {
			// decode failure or unknown htype: frame already logged by
			// the registry, drop it.
			if w.tel != nil {
				w.tel.recordDropped(ctx, 1)
			}
			continue
		}

		if w.tel != nil {
			w.tel.recordReceived(ctx, 1)
		}

		if !w.queue.Push(ctx, done, msg) {
			return
		}
	}
}
