package message

import (
	"fmt"

	"github.com/whitaker-io/data"
)

// dheaderHandler implements dheader-1.0: a control message whose Data
// is a merged mapping built from its non-header segments rather than a
// byte payload. It has no frame index, shape, or dtype.
//
// Merge order: the first segment is the base mapping; a segment
// flagged present by the "appendix" header is the last segment and is
// merged in next, directly on top of the base; when header_detail ==
// "all" the remaining segments are merged in order last, on top of the
// appendix, so an "all" detail key always wins over the same key in
// the appendix. Segments that don't decode as a JSON object are
// silently skipped rather than treated as an error, since one tested
// source variant stores raw (non-JSON) detail segments alongside JSON
// ones.
type dheaderHandler struct{}

func (dheaderHandler) Header(m *Message) data.Data { return m.frame.Header }

func (dheaderHandler) FrameIndex(m *Message) int { return -1 }

func (dheaderHandler) Data(m *Message) (interface{}, error) {
	parts := m.frame.Payload
	merged := map[string]interface{}{}

	if len(parts) == 0 {
		return merged, nil
	}

	if err := mergeJSONPart(merged, parts[0]); err != nil {
		return nil, fmt.Errorf("dheader-1.0: part 2: %w", err)
	}

	rest := parts[1:]

	hasAppendix, err := boolField(m.frame.Header, "appendix")
	if err != nil {
		return nil, fmt.Errorf("dheader-1.0: %w", err)
	}

	var appendix []byte
	if hasAppendix && len(rest) > 0 {
		appendix = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}

	if appendix != nil {
		_ = mergeJSONPart(merged, appendix)
	}

	detail, _ := stringField(m.frame.Header, "header_detail")
	if detail == "all" {
		for _, part := range rest {
			_ = mergeJSONPart(merged, part)
		}
	}

	return merged, nil
}

func (dheaderHandler) DataLength(m *Message) (int, error) {
	total := 0
	for _, part := range m.frame.Payload {
		total += len(part)
	}
	return total, nil
}

func (dheaderHandler) Shape(m *Message) ([]int, error) {
	return nil, fmt.Errorf("dheader-1.0: no shape in a header message")
}

func (dheaderHandler) Dtype(m *Message) (string, error) {
	return "", fmt.Errorf("dheader-1.0: no dtype in a header message")
}
