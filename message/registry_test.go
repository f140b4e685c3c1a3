package message

import (
	"encoding/json"
	"testing"

	"github.com/whitaker-io/data"
)

func header(t *testing.T, fields map[string]interface{}) data.Data {
	t.Helper()
	return data.Data(fields)
}

func TestDecodeArray(t *testing.T) {
	r := NewDefaultRegistry(nil)

	frame := Frame{
		Header:  header(t, map[string]interface{}{"htype": "array-1.0", "frame": 3.0, "shape": []interface{}{2.0, 2.0}, "type": "uint16"}),
		Payload: [][]byte{{1, 2, 3, 4}},
	}

	msg := r.Decode(frame)
	if msg == nil {
		t.Fatalf("expected a decoded message")
	}

	if msg.FrameIndex() != 3 {
		t.Errorf("expected frame index 3, got %d", msg.FrameIndex())
	}

	length, err := msg.DataLength()
	if err != nil || length != 4 {
		t.Errorf("expected data length 4, got %d (err %v)", length, err)
	}

	shape, err := msg.Shape()
	if err != nil || len(shape) != 2 || shape[0] != 2 || shape[1] != 2 {
		t.Errorf("unexpected shape %v (err %v)", shape, err)
	}

	dtype, err := msg.Dtype()
	if err != nil || dtype != "uint16" {
		t.Errorf("unexpected dtype %q (err %v)", dtype, err)
	}
}

func TestDecodeUnknownHtypeDropped(t *testing.T) {
	r := NewDefaultRegistry(nil)

	frame := Frame{
		Header:  header(t, map[string]interface{}{"htype": "nope-1.0"}),
		Payload: [][]byte{{1}},
	}

	if msg := r.Decode(frame); msg != nil {
		t.Fatalf("expected nil for unknown htype, got %+v", msg)
	}
}

func TestDecodeMissingHeader(t *testing.T) {
	r := NewDefaultRegistry(nil)

	if msg := r.Decode(Frame{}); msg != nil {
		t.Fatalf("expected nil for missing header, got %+v", msg)
	}
}

func TestDecodeDheaderMerge(t *testing.T) {
	r := NewDefaultRegistry(nil)

	base, _ := json.Marshal(map[string]interface{}{"a": 1.0})
	extra, _ := json.Marshal(map[string]interface{}{"a": 7.0, "b": 2.0})
	appendix, _ := json.Marshal(map[string]interface{}{"a": 99.0, "c": 3.0})

	frame := Frame{
		Header: header(t, map[string]interface{}{
			"htype":          "dheader-1.0",
			"header_detail":  "all",
			"appendix":       true,
		}),
		Payload: [][]byte{base, extra, appendix},
	}

	msg := r.Decode(frame)
	if msg == nil {
		t.Fatalf("expected a decoded message")
	}

	if msg.FrameIndex() != -1 {
		t.Errorf("expected frame index -1, got %d", msg.FrameIndex())
	}

	data, err := msg.Data()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	merged, ok := data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a merged map, got %T", data)
	}

	if merged["c"] != 3.0 {
		t.Errorf("expected appendix to overlay base, got c=%v", merged["c"])
	}

	if merged["a"] != 7.0 {
		t.Errorf("expected an 'all' detail part to win over the same key in the appendix, got a=%v", merged["a"])
	}

	if merged["b"] != 2.0 {
		t.Errorf("expected detail part merged, got b=%v", merged["b"])
	}

	if _, err := msg.Shape(); err == nil {
		t.Errorf("expected shape query on dheader-1.0 to error")
	}
}

func TestDecodeSeriesEnd(t *testing.T) {
	r := NewDefaultRegistry(nil)

	frame := Frame{
		Header: header(t, map[string]interface{}{"htype": "dseries_end-1.0"}),
	}

	msg := r.Decode(frame)
	if msg == nil {
		t.Fatalf("expected a decoded message")
	}

	d, err := msg.Data()
	if err != nil || d != nil {
		t.Errorf("expected nil data, got %v (err %v)", d, err)
	}
}

func TestDecodeRawBypassesDispatch(t *testing.T) {
	r := NewDefaultRegistry(nil)

	frame := Frame{
		Header:  header(t, map[string]interface{}{"htype": "whatever-9.9", "frame": 7.0}),
		Payload: [][]byte{{1, 2}},
	}

	msg := r.DecodeRaw(frame)
	if msg.FrameIndex() != 7 {
		t.Errorf("expected frame index 7, got %d", msg.FrameIndex())
	}
}
