package message

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is a mapping from htype strings to codec Handlers. It is
// immutable after construction, aside from the one-time Register calls
// made while wiring up a node.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	raw      Handler
	logger   logrus.FieldLogger

	warnedMu sync.Mutex
	warned   map[string]struct{}
}

// NewRegistry returns an empty Registry. Use NewDefaultRegistry to get
// one pre-populated with the known htypes.
func NewRegistry(logger logrus.FieldLogger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Registry{
		handlers: map[string]Handler{},
		raw:      rawHandler{},
		logger:   logger,
		warned:   map[string]struct{}{},
	}
}

// NewDefaultRegistry returns a Registry with the array-1.0, dimage-1.0,
// dheader-1.0, dseries_end-1.0, and raw-1.0 handlers already registered.
func NewDefaultRegistry(logger logrus.FieldLogger) *Registry {
	r := NewRegistry(logger)
	r.Register("array-1.0", arrayHandler{})
	r.Register("dimage-1.0", dimageHandler{})
	r.Register("dheader-1.0", dheaderHandler{})
	r.Register("dseries_end-1.0", dseriesEndHandler{})
	r.Register("raw-1.0", rawHandler{})
	return r
}

// Register adds a handler for the given htype, replacing any existing
// handler for it.
func (r *Registry) Register(htype string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[htype] = h
}

// Decode maps a raw frame to a typed Message using the handler
// registered for the frame's htype. It returns nil, never an error,
// when the header is absent, the htype is unknown, or the htype field
// itself is malformed. An unknown htype is logged once per htype; a
// missing header or malformed htype is logged on every drop.
func (r *Registry) Decode(raw Frame) *Message {
	if raw.Header == nil {
		r.logger.Warn("dropping frame: no header present")
		return nil
	}

	htype, err := stringField(raw.Header, "htype")
	if err != nil {
		r.logger.WithError(err).Warn("dropping frame: malformed htype")
		return nil
	}

	r.mu.RLock()
	handler, ok := r.handlers[htype]
	r.mu.RUnlock()

	if !ok {
		r.warnOnce(htype)
		return nil
	}

	return &Message{htype: htype, frame: raw, handler: handler}
}

// DecodeRaw bypasses htype dispatch entirely and wraps the frame with
// the passthrough raw-1.0 handler. frame_index is read from
// header.frame when present, else -1.
func (r *Registry) DecodeRaw(raw Frame) *Message {
	htype := "raw-1.0"
	if raw.Header != nil {
		if h, err := stringField(raw.Header, "htype"); err == nil {
			htype = h
		}
	}

	return &Message{htype: htype, frame: raw, handler: r.raw}
}

func (r *Registry) warnOnce(htype string) {
	r.warnedMu.Lock()
	defer r.warnedMu.Unlock()

	if _, ok := r.warned[htype]; ok {
		return
	}

	r.warned[htype] = struct{}{}
	r.logger.WithField("htype", htype).Warn("no handler for htype available, dropping message")
}
