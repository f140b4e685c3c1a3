package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/psi-streaming/nodeflow/message"
	"github.com/psi-streaming/nodeflow/node"
	"github.com/psi-streaming/nodeflow/transport/inproc"
)

type noopProcessor struct{}

func (noopProcessor) Start() error                                 { return nil }
func (noopProcessor) Stop() error                                  { return nil }
func (noopProcessor) Process(msg *message.Message) error           { return nil }
func (noopProcessor) SetParameter(name string, value interface{}) error { return nil }
func (noopProcessor) Describe() string                             { return "noop" }
func (noopProcessor) CurrentParameters() map[string]interface{}    { return map[string]interface{}{} }

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	socket := inproc.NewSocket(4)
	t.Cleanup(func() { socket.Close() })

	mgr := node.NewManager(node.ManagerConfig{
		Processor:      noopProcessor{},
		Dialer:         inproc.NewReceiverDialer(socket),
		StartupTimeout: time.Second,
		PollTimeout:    10 * time.Millisecond,
	})
	t.Cleanup(func() { mgr.Stop() })

	s := NewServer(nil)
	s.Register("test", mgr)

	return s, "test"
}

func TestControlHelpAndStatus(t *testing.T) {
	s, inst := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/"+inst+"/help", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected help response: %v %v", resp, err)
	}

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/"+inst+"/status", nil)
	resp, err = s.app.Test(req, -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status response: %v %v", resp, err)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if env.Status != "ok" {
		t.Fatalf("expected ok status, got %+v", env)
	}
}

func TestControlStartStopLifecycle(t *testing.T) {
	s, inst := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, "/api/v1/"+inst+"/start", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected start response: %v %v", resp, err)
	}

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/"+inst+"/status", nil)
	resp, _ = s.app.Test(req, -1)
	var env envelope
	json.NewDecoder(resp.Body).Decode(&env)

	data, _ := json.Marshal(env.Data)
	if !bytes.Contains(data, []byte(`"is_running":true`)) {
		t.Fatalf("expected is_running true after start, got %s", data)
	}

	req, _ = http.NewRequest(http.MethodDelete, "/api/v1/"+inst+"/stop", nil)
	resp, err = s.app.Test(req, -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected stop response: %v %v", resp, err)
	}
}

func TestControlUnknownInstanceIs500(t *testing.T) {
	s, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/does-not-exist/help", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unknown instance, got %d", resp.StatusCode)
	}
}

func TestControlSetParameters(t *testing.T) {
	s, inst := newTestServer(t)

	body := bytes.NewBufferString(`{"mode":"fast"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/"+inst+"/parameters", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected set-parameters response: %v %v", resp, err)
	}
}
