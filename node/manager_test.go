package node

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/whitaker-io/data"

	"github.com/psi-streaming/nodeflow/message"
	"github.com/psi-streaming/nodeflow/transport"
	"github.com/psi-streaming/nodeflow/transport/inproc"
)

// failingDialer always fails to dial, used to exercise the Manager's
// startup-timeout-and-cleanup path.
type failingDialer struct{}

func (failingDialer) Dial(transport.Options) (transport.Receiver, error) {
	return nil, fmt.Errorf("dial always fails in this test")
}

// recordingProcessor is a minimal Processor used to exercise the
// Manager's lifecycle and parameter policy without any real transport
// or storage backend.
type recordingProcessor struct {
	mu         sync.Mutex
	started    bool
	stopped    bool
	processed  []int
	parameters map[string]interface{}
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{parameters: map[string]interface{}{"mode": "default"}}
}

func (p *recordingProcessor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = true
	return nil
}

func (p *recordingProcessor) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	return nil
}

func (p *recordingProcessor) Process(msg *message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, msg.FrameIndex())
	return nil
}

func (p *recordingProcessor) SetParameter(name string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parameters[name] = value
	return nil
}

func (p *recordingProcessor) Describe() string { return "recording processor" }

func (p *recordingProcessor) CurrentParameters() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string]interface{}{}
	for k, v := range p.parameters {
		out[k] = v
	}
	return out
}

func (p *recordingProcessor) processedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

func arrayFrame(frameIndex int) message.Frame {
	return message.Frame{
		Header: data.Data(map[string]interface{}{
			"htype": "array-1.0",
			"frame": float64(frameIndex),
			"shape": []interface{}{1.0},
			"type":  "uint8",
		}),
		Payload: [][]byte{{byte(frameIndex)}},
	}
}

func newTestManager(t *testing.T, proc Processor) (*Manager, *inproc.Socket) {
	t.Helper()

	socket := inproc.NewSocket(4)
	mgr := NewManager(ManagerConfig{
		Processor:      proc,
		Dialer:         inproc.NewReceiverDialer(socket),
		Registry:       message.NewDefaultRegistry(nil),
		StartupTimeout: time.Second,
		PollTimeout:    20 * time.Millisecond,
		InstanceName:   "test",
	})

	return mgr, socket
}

func TestManagerStartStopLifecycle(t *testing.T) {
	proc := newRecordingProcessor()
	mgr, socket := newTestManager(t, proc)
	defer socket.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if !mgr.IsRunning() {
		t.Fatal("expected manager to report running after Start")
	}

	if err := mgr.Start(); err != ErrAlreadyRunning {
		t.Fatalf("expected ErrAlreadyRunning on double start, got %v", err)
	}

	if err := mgr.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if mgr.IsRunning() {
		t.Fatal("expected manager to report stopped after Stop")
	}

	// Idempotent.
	if err := mgr.Stop(); err != nil {
		t.Fatalf("expected second Stop to be a no-op, got %v", err)
	}

	proc.mu.Lock()
	started, stopped := proc.started, proc.stopped
	proc.mu.Unlock()

	if !started || !stopped {
		t.Fatalf("expected processor Start and Stop to have been called, got started=%v stopped=%v", started, stopped)
	}
}

func TestManagerProcessesFramesEndToEnd(t *testing.T) {
	proc := newRecordingProcessor()
	mgr, socket := newTestManager(t, proc)
	defer socket.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	defer mgr.Stop()

	for i := 0; i < 3; i++ {
		if err := socket.Forward(context.Background(), arrayFrame(i)); err != nil {
			t.Fatalf("unexpected forward error: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for proc.processedCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := proc.processedCount(); got != 3 {
		t.Fatalf("expected 3 frames processed, got %d", got)
	}

	raw := mgr.GetStatisticsRaw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 statistics samples, got %d", len(raw))
	}
}

func TestManagerRestartResetsStatistics(t *testing.T) {
	proc := newRecordingProcessor()
	mgr, socket := newTestManager(t, proc)
	defer socket.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	for i := 0; i < 16; i++ {
		if err := socket.Forward(context.Background(), arrayFrame(i)); err != nil {
			t.Fatalf("unexpected forward error: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for proc.processedCount() < 16 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := proc.processedCount(); got != 16 {
		t.Fatalf("expected 16 frames processed in the first run, got %d", got)
	}

	if err := mgr.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	if err := mgr.Start(); err != nil {
		t.Fatalf("unexpected restart error: %v", err)
	}
	defer mgr.Stop()

	for i := 0; i < 4; i++ {
		if err := socket.Forward(context.Background(), arrayFrame(i)); err != nil {
			t.Fatalf("unexpected forward error: %v", err)
		}
	}

	deadline = time.Now().Add(time.Second)
	for len(mgr.GetStatisticsRaw()) < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	raw := mgr.GetStatisticsRaw()
	if len(raw) != 4 {
		t.Fatalf("expected the second run's statistics to show exactly 4 samples independent of the first run, got %d", len(raw))
	}

	agg := mgr.GetStatistics()
	if agg.TotalFrames != 4 {
		t.Fatalf("expected aggregate total_frames=4 after restart, got %d", agg.TotalFrames)
	}
}

func TestManagerSetParametersForwardsToProcessor(t *testing.T) {
	proc := newRecordingProcessor()
	mgr, socket := newTestManager(t, proc)
	defer socket.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	defer mgr.Stop()

	mgr.SetParameters(map[string]interface{}{"mode": "fast"})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if v, _ := proc.CurrentParameters()["mode"].(string); v == "fast" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if v := proc.CurrentParameters()["mode"]; v != "fast" {
		t.Fatalf("expected processor parameter mode=fast, got %v", v)
	}

	params := mgr.GetParameters()
	if params["mode"] != "fast" {
		t.Fatalf("expected manager snapshot to show mode=fast, got %v", params["mode"])
	}
}

func TestManagerGetParametersOrderedJSON(t *testing.T) {
	proc := newRecordingProcessor()
	mgr, socket := newTestManager(t, proc)
	defer socket.Close()

	mgr.SetParameters(map[string]interface{}{"a": 1})
	mgr.SetParameters(map[string]interface{}{"b": 2})

	out, err := json.Marshal(mgr.GetParametersOrdered())
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	if string(out) != `{"a":1,"b":2}` {
		t.Fatalf("expected ordered JSON {\"a\":1,\"b\":2}, got %s", out)
	}
}

func TestManagerStartupFailsWhenDialerErrors(t *testing.T) {
	proc := newRecordingProcessor()
	mgr := NewManager(ManagerConfig{
		Processor:      proc,
		Dialer:         failingDialer{},
		Registry:       message.NewDefaultRegistry(nil),
		StartupTimeout: 50 * time.Millisecond,
		PollTimeout:    10 * time.Millisecond,
	})

	if err := mgr.Start(); err != ErrStartupFailed {
		t.Fatalf("expected ErrStartupFailed, got %v", err)
	}
	if mgr.IsRunning() {
		t.Fatal("expected manager to not be running after a failed start")
	}
}
