package message

import (
	"encoding/json"
	"fmt"

	"github.com/whitaker-io/data"
)

// dimageHandler implements dimage-1.0: a multi-part frame where the
// shape/dtype metadata lives in the second segment (JSON) and the raw
// pixel data is the third segment.
type dimageHandler struct{}

func (dimageHandler) Header(m *Message) data.Data { return m.frame.Header }

func (dimageHandler) FrameIndex(m *Message) int {
	return intField(m.frame.Header, "frame", -1)
}

func (dimageHandler) Data(m *Message) (interface{}, error) {
	if len(m.frame.Payload) < 2 {
		return nil, fmt.Errorf("dimage-1.0: missing raw data segment")
	}
	return m.frame.Payload[1], nil
}

func (dimageHandler) DataLength(m *Message) (int, error) {
	meta, err := dimageHandler{}.meta(m)
	if err != nil {
		return 0, err
	}

	v, ok := meta["size"]
	if !ok {
		if len(m.frame.Payload) >= 2 {
			return len(m.frame.Payload[1]), nil
		}
		return 0, fmt.Errorf("dimage-1.0: no size in metadata segment")
	}

	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("dimage-1.0: size field is not numeric")
	}
}

func (dimageHandler) Shape(m *Message) ([]int, error) {
	meta, err := dimageHandler{}.meta(m)
	if err != nil {
		return nil, err
	}

	raw, ok := meta["shape"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("dimage-1.0: missing shape in metadata segment")
	}

	out := make([]int, 0, len(raw))
	for _, item := range raw {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("dimage-1.0: non-numeric shape element")
		}
		out = append(out, int(f))
	}

	return out, nil
}

func (dimageHandler) Dtype(m *Message) (string, error) {
	meta, err := dimageHandler{}.meta(m)
	if err != nil {
		return "", err
	}

	s, ok := meta["type"].(string)
	if !ok {
		return "", fmt.Errorf("dimage-1.0: missing type in metadata segment")
	}

	return s, nil
}

func (dimageHandler) meta(m *Message) (map[string]interface{}, error) {
	if len(m.frame.Payload) < 1 {
		return nil, fmt.Errorf("dimage-1.0: missing metadata segment")
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(m.frame.Payload[0], &meta); err != nil {
		return nil, fmt.Errorf("dimage-1.0: decoding metadata segment: %w", err)
	}

	return meta, nil
}
