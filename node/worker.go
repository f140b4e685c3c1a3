package node

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psi-streaming/nodeflow/message"
)

// DefaultPollTimeout bounds how long the processor worker waits on an
// empty data queue before re-checking its live flag.
const DefaultPollTimeout = time.Second

// processorWorker is the single-threaded consumer that drains the
// data queue through the user-supplied Processor.
type processorWorker struct {
	processor Processor
	queue     *dataQueue
	params    *parameterQueue
	stats     *StatisticsRing
	live      *liveFlag
	pollEvery time.Duration
	logger    logrus.FieldLogger
	tel       *telemetry

	processGID interface{}
	processUID interface{}
	nMessages  int // 0 means unlimited
}

// run executes the startup sequence, main loop, and shutdown. It
// always calls processor.Stop() before returning, on every
// exit path including panics recovered from Process.
func (w *processorWorker) run(ctx context.Context, done <-chan struct{}) {
	log := w.logger.WithField("component", "processor")

	w.applyParameters(w.params.DrainAll(), log)

	defer func() {
		if err := w.processor.Stop(); err != nil {
			log.WithError(err).Error("processor failed to stop")
		}
	}()

	if err := w.processor.Start(); err != nil {
		log.WithError(err).Error("processor failed to start")
		w.live.Clear()
		return
	}

	pollEvery := w.pollEvery
	if pollEvery <= 0 {
		pollEvery = DefaultPollTimeout
	}

	w.live.Set()

	processed := 0

	for w.live.IsSet() {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		default:
		}

		msg, ok := w.popWithTimeout(ctx, done, pollEvery)
		if ok && msg != nil {
			w.process(ctx, msg, log)
			processed++
		}

		w.applyParameters(w.params.DrainAll(), log)

		if w.nMessages > 0 && processed >= w.nMessages {
			w.live.Clear()
			return
		}
	}
}

// popWithTimeout attempts a bounded-wait pop: it returns (nil, true)
// on a plain timeout (an empty poll, not a failure) and (nil, false)
// only when ctx or done fired.
func (w *processorWorker) popWithTimeout(ctx context.Context, done <-chan struct{}, timeout time.Duration) (*message.Message, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.queue.ch:
		return msg, true
	case <-timer.C:
		return nil, true
	case <-ctx.Done():
		return nil, false
	case <-done:
		return nil, false
	}
}

// process runs one Processor.Process call with timing, recovering
// from a panic the way a transport failure is handled: log, clear the
// live flag, and let the caller's deferred Stop() run.
func (w *processorWorker) process(ctx context.Context, msg *message.Message, log logrus.FieldLogger) {
	if w.tel != nil {
		_, endSpan := w.tel.startProcessSpan(ctx, msg.FrameIndex())
		defer endSpan()
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("processor panicked, stopping")
			w.live.Clear()
		}
	}()

	start := time.Now()
	err := w.processor.Process(msg)
	duration := time.Since(start)

	if err != nil {
		log.WithError(err).Error("processor returned an error, stopping")
		w.live.Clear()
	}

	length, lenErr := msg.DataLength()
	if lenErr != nil {
		log.WithError(lenErr).Warn("processor worker: could not determine data length for statistics")
		length = 0
	}

	w.stats.Append(StatisticsSample{
		FrameIndex:     msg.FrameIndex(),
		ByteLength:     length,
		ProcessingTime: duration,
	})

	if w.tel != nil {
		w.tel.recordProcessed(ctx, length, duration, err)
	}
}

// applyParameters applies a drained batch in reserved-parameter order:
// process_gid before process_uid regardless of the order they arrived
// in, since dropping the uid first would leave the process without
// permission to change its gid afterward. n_messages applies after
// both, and the forwarded parameters apply last, in arrival order.
//
// The reserved subset (process_gid, process_uid, n_messages) is
// decoded as one unit via mapstructure ahead of validation, rather
// than coercing each value by hand. If any reserved value fails to
// decode, the error is logged and none of the batch's reserved names
// is applied; the forwarded parameters are applied regardless.
func (w *processorWorker) applyParameters(batch []Parameter, log logrus.FieldLogger) {
	raw := map[string]interface{}{}
	var haveGID, haveUID, haveNMessages bool
	var rest []Parameter

	for i := range batch {
		switch batch[i].Name {
		case ParamProcessGID:
			haveGID = true
			raw[ParamProcessGID] = batch[i].Value
		case ParamProcessUID:
			haveUID = true
			raw[ParamProcessUID] = batch[i].Value
		case ParamNMessages:
			haveNMessages = true
			raw[ParamNMessages] = batch[i].Value
		default:
			rest = append(rest, batch[i])
		}
	}

	reserved, err := decodeReservedParameters(raw)
	if err != nil {
		log.WithError(err).Error("invalid reserved parameter value")
	} else {
		if haveGID && reserved.ProcessGID != nil {
			w.applyGID(*reserved.ProcessGID, log)
		}
		if haveUID && reserved.ProcessUID != nil {
			w.applyUID(*reserved.ProcessUID, log)
		}
		if haveNMessages && reserved.NMessages != nil {
			w.nMessages = *reserved.NMessages
		}
	}

	for _, p := range rest {
		w.applyParameter(p, log)
	}
}

// applyParameter applies a single forwarded (non-reserved) parameter
// to the processor.
func (w *processorWorker) applyParameter(p Parameter, log logrus.FieldLogger) {
	if err := w.processor.SetParameter(p.Name, p.Value); err != nil {
		log.WithError(err).WithField("parameter", p.Name).Error("processor rejected parameter")
	}
}

// applyGID drops the process's group id. It is applied before
// applyUID on every code path (applyParameters' reserved-parameter
// order) because dropping the uid first would leave the process
// without permission to change its gid afterwards.
func (w *processorWorker) applyGID(gid int, log logrus.FieldLogger) {
	if err := setGID(gid); err != nil {
		log.WithError(err).WithField("gid", gid).Error("failed to set process gid")
		return
	}

	w.processGID = gid
}

func (w *processorWorker) applyUID(uid int, log logrus.FieldLogger) {
	if err := setUID(uid); err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to set process uid")
		return
	}

	w.processUID = uid
}
