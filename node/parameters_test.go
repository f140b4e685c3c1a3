package node

import (
	"encoding/json"
	"testing"
)

func TestParametersSetAllPreservesFirstSeenOrder(t *testing.T) {
	p := newParameters()

	p.SetAll(map[string]interface{}{"x": 1})
	p.SetAll(map[string]interface{}{"y": 2})
	p.Set("x", 10)

	order := p.OrderedList()
	if len(order) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(order))
	}
	if order[0].Name != "x" || order[1].Name != "y" {
		t.Fatalf("expected order [x, y], got [%s, %s]", order[0].Name, order[1].Name)
	}
	if order[0].Value != 10 {
		t.Errorf("expected x updated to 10, got %v", order[0].Value)
	}
}

func TestOrderedParametersMarshalJSONPreservesOrder(t *testing.T) {
	ordered := orderedParameters{
		{Name: "b", Value: 2},
		{Name: "a", Value: 1},
	}

	out, err := json.Marshal(ordered)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"b":2,"a":1}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestParametersSnapshotIsACopy(t *testing.T) {
	p := newParameters()
	p.Set("a", 1)

	snap := p.Snapshot()
	snap["a"] = 999

	if v := p.Snapshot()["a"]; v != 1 {
		t.Fatalf("expected mutation of snapshot to not affect parameters, got %v", v)
	}
}
