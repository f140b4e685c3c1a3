package node

import "testing"

func TestParameterQueueDrainOrder(t *testing.T) {
	q := newParameterQueue()

	if drained := q.DrainAll(); drained != nil {
		t.Fatalf("expected nil drain from empty queue, got %v", drained)
	}

	q.Push(Parameter{Name: "a", Value: 1})
	q.Push(Parameter{Name: "b", Value: 2})

	drained := q.DrainAll()
	if len(drained) != 2 || drained[0].Name != "a" || drained[1].Name != "b" {
		t.Fatalf("expected [a, b] in arrival order, got %v", drained)
	}

	if drained := q.DrainAll(); drained != nil {
		t.Fatalf("expected queue to be empty after drain, got %v", drained)
	}
}
