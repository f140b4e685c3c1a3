package node

import (
	"bytes"
	"encoding/json"
	"sync"
)

// parameters is the insertion-ordered map of the most recent value for
// each parameter name. Order is preserved across distinct SetAll
// calls — the order of names *within*
// a single map argument is whatever Go's map iteration gives, since
// that information is already lost by the time a JSON request body has
// been unmarshaled into a map[string]interface{}.
type parameters struct {
	mu     sync.Mutex
	order  []string
	values map[string]interface{}
}

func newParameters() *parameters {
	return &parameters{values: map[string]interface{}{}}
}

// Set stores value under name, appending name to the insertion order
// only the first time it is seen.
func (p *parameters) Set(name string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.values[name]; !ok {
		p.order = append(p.order, name)
	}
	p.values[name] = value
}

// SetAll applies every entry of m and returns them as Parameters in
// the order they were applied, for enqueuing onto the parameter queue.
func (p *parameters) SetAll(m map[string]interface{}) []Parameter {
	out := make([]Parameter, 0, len(m))
	for name, value := range m {
		p.Set(name, value)
		out = append(out, Parameter{Name: name, Value: value})
	}
	return out
}

// OrderedList returns every current parameter in insertion order.
func (p *parameters) OrderedList() []Parameter {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Parameter, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, Parameter{Name: name, Value: p.values[name]})
	}
	return out
}

// Snapshot returns a plain copy of the current parameters.
func (p *parameters) Snapshot() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]interface{}, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// orderedParameters is a JSON-marshalable view of a parameter snapshot
// that preserves insertion order, mirroring an OrderedDict-style
// get_parameters response.
type orderedParameters []Parameter

func (o orderedParameters) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	for i, p := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
