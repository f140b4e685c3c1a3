package message

import (
	"github.com/whitaker-io/data"
)

// rawHandler implements raw-1.0: a passthrough handler that makes no
// assumption about segment count. It also backs decode_raw, which
// bypasses htype dispatch entirely.
type rawHandler struct{}

func (rawHandler) Header(m *Message) data.Data { return m.frame.Header }

func (rawHandler) FrameIndex(m *Message) int {
	return intField(m.frame.Header, "frame", -1)
}

func (rawHandler) Data(m *Message) (interface{}, error) {
	if len(m.frame.Payload) == 1 {
		return m.frame.Payload[0], nil
	}
	return m.frame.Payload, nil
}

func (rawHandler) DataLength(m *Message) (int, error) {
	total := 0
	for _, seg := range m.frame.Payload {
		total += len(seg)
	}
	return total, nil
}

func (rawHandler) Shape(m *Message) ([]int, error) {
	return intSliceField(m.frame.Header, "shape")
}

func (rawHandler) Dtype(m *Message) (string, error) {
	return stringField(m.frame.Header, "type")
}
