package node

import (
	"testing"
	"time"
)

func TestLiveFlagSetClear(t *testing.T) {
	f := newLiveFlag()
	if f.IsSet() {
		t.Fatal("expected flag to start cleared")
	}

	f.Set()
	if !f.IsSet() {
		t.Fatal("expected flag to be set")
	}

	f.Clear()
	if f.IsSet() {
		t.Fatal("expected flag to be cleared")
	}
}

func TestLiveFlagWaitSetAlreadyLive(t *testing.T) {
	f := newLiveFlag()
	f.Set()

	if !f.WaitSet(time.Millisecond) {
		t.Fatal("expected WaitSet to return immediately true when already live")
	}
}

func TestLiveFlagWaitSetWakesOnSet(t *testing.T) {
	f := newLiveFlag()

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Set()
	}()

	if !f.WaitSet(time.Second) {
		t.Fatal("expected WaitSet to return true once Set is called")
	}
}

func TestLiveFlagWaitSetTimesOut(t *testing.T) {
	f := newLiveFlag()

	if f.WaitSet(10 * time.Millisecond) {
		t.Fatal("expected WaitSet to time out and return false")
	}
}

func TestWaitAllLiveShortCircuits(t *testing.T) {
	live := newLiveFlag()
	live.Set()
	neverLive := newLiveFlag()

	start := time.Now()
	ok := waitAllLive([]*liveFlag{live, neverLive}, 30*time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Fatal("expected waitAllLive to fail when one flag never goes live")
	}
	if elapsed > 100*time.Millisecond {
		t.Fatalf("expected waitAllLive to respect the shared deadline, took %s", elapsed)
	}
}

func TestWaitAllLiveAllLive(t *testing.T) {
	a, b := newLiveFlag(), newLiveFlag()
	a.Set()
	b.Set()

	if !waitAllLive([]*liveFlag{a, b}, time.Second) {
		t.Fatal("expected waitAllLive to succeed when all flags are live")
	}
}
