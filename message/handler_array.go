package message

import (
	"fmt"

	"github.com/whitaker-io/data"
)

// arrayHandler implements the array-1.0 handler: a single payload
// segment whose shape and element type live in the frame header.
type arrayHandler struct{}

func (arrayHandler) Header(m *Message) data.Data { return m.frame.Header }

func (arrayHandler) FrameIndex(m *Message) int {
	return intField(m.frame.Header, "frame", -1)
}

func (arrayHandler) Data(m *Message) (interface{}, error) {
	if len(m.frame.Payload) < 1 {
		return nil, fmt.Errorf("array-1.0: missing data segment")
	}
	return m.frame.Payload[0], nil
}

func (arrayHandler) DataLength(m *Message) (int, error) {
	if len(m.frame.Payload) < 1 {
		return 0, fmt.Errorf("array-1.0: missing data segment")
	}
	return len(m.frame.Payload[0]), nil
}

func (arrayHandler) Shape(m *Message) ([]int, error) {
	return intSliceField(m.frame.Header, "shape")
}

func (arrayHandler) Dtype(m *Message) (string, error) {
	return stringField(m.frame.Header, "type")
}
