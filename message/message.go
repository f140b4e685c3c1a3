// Package message turns raw transport frames into typed Message values
// keyed by the wire "htype" tag (array-1.0, dimage-1.0, dheader-1.0,
// dseries_end-1.0, raw-1.0).
package message

import (
	"github.com/whitaker-io/data"
)

// Frame is one raw, still-undecoded transport frame: a JSON header part
// and zero or more payload segments that follow it.
type Frame struct {
	Header  data.Data
	Payload [][]byte
}

// Handler is the per-htype accessor contract. One Handler is registered
// per known htype; Message delegates every accessor to it.
type Handler interface {
	Header(m *Message) data.Data
	FrameIndex(m *Message) int
	Data(m *Message) (interface{}, error)
	DataLength(m *Message) (int, error)
	Shape(m *Message) ([]int, error)
	Dtype(m *Message) (string, error)
}

// Message is a typed, immutable view over one transport frame. It is
// created by a Registry from a Frame and owned by whichever worker is
// currently handling it; it is never mutated after construction.
type Message struct {
	htype   string
	frame   Frame
	handler Handler
}

// HType returns the wire htype tag this message was decoded with.
func (m *Message) HType() string { return m.htype }

// Frame returns the raw frame the Message was decoded from.
func (m *Message) Frame() Frame { return m.frame }

// Header returns the free-form header mapping carried by the frame.
func (m *Message) Header() data.Data { return m.handler.Header(m) }

// FrameIndex returns the frame's sequence number, or -1 for control
// messages (dheader-1.0, dseries_end-1.0).
func (m *Message) FrameIndex() int { return m.handler.FrameIndex(m) }

// Data returns the message's payload view. Its concrete type is
// htype-dependent: []byte for data-carrying types (raw-1.0 with more
// than one segment gives [][]byte), a merged map[string]interface{}
// for dheader-1.0, nil for dseries_end-1.0.
func (m *Message) Data() (interface{}, error) { return m.handler.Data(m) }

// DataLength returns the byte length backing this message's payload.
func (m *Message) DataLength() (int, error) { return m.handler.DataLength(m) }

// Shape returns the array shape for data-carrying types. It errors for
// control types (dheader-1.0, dseries_end-1.0).
func (m *Message) Shape() ([]int, error) { return m.handler.Shape(m) }

// Dtype returns the numeric element type name for data-carrying types.
// It errors for control types.
func (m *Message) Dtype() (string, error) { return m.handler.Dtype(m) }
