package message

import (
	"encoding/json"
	"fmt"

	"github.com/whitaker-io/data"
)

// intField reads an integer header field through data.Data's own Int
// accessor, falling back to fallback when the key is absent or its
// value isn't numeric.
func intField(h data.Data, key string, fallback int) int {
	v, err := h.Int(key)
	if err != nil {
		return fallback
	}
	return v
}

// stringField reads a string header field through data.Data's own
// String accessor.
func stringField(h data.Data, key string) (string, error) {
	return h.String(key)
}

// boolField reads a bool header field through data.Data's own Bool
// accessor, treating an absent key as false rather than an error:
// dheader-1.0's "appendix" flag is optional.
func boolField(h data.Data, key string) (bool, error) {
	if _, present := h[key]; !present {
		return false, nil
	}
	return h.Bool(key)
}

// intSliceField reads a numeric array header field (e.g. "shape") and
// converts each element to int. data.Data has no slice-typed
// accessor, so this reads the element directly off the map the same
// way data.Data's own accessors do, then converts each entry the way
// intField converts a single one.
func intSliceField(h data.Data, key string) ([]int, error) {
	v, ok := h[key]
	if !ok {
		return nil, fmt.Errorf("missing header field %q", key)
	}

	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("header field %q is not a list", key)
	}

	out := make([]int, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		default:
			return nil, fmt.Errorf("header field %q has a non-numeric element", key)
		}
	}

	return out, nil
}

// mergeJSONPart decodes part as a JSON object and merges its keys into
// dst, overwriting existing keys.
func mergeJSONPart(dst map[string]interface{}, part []byte) error {
	var decoded map[string]interface{}
	if err := json.Unmarshal(part, &decoded); err != nil {
		return err
	}

	for k, v := range decoded {
		dst[k] = v
	}

	return nil
}
