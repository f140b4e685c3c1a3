package node

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultIPCTimeout bounds how long a Proxy call waits for its
// response envelope before failing with ErrIPCTimeout.
const DefaultIPCTimeout = 2 * time.Second

// DefaultShutdownTimeout bounds how long Proxy.Stop waits for the
// child's graceful exit before it is forcibly killed.
const DefaultShutdownTimeout = 5 * time.Second

// call is the request envelope sent to the child: {call_id, method,
// args, kwargs}.
type call struct {
	CallID string                 `json:"call_id"`
	Method string                 `json:"method"`
	Args   []interface{}          `json:"args,omitempty"`
	Kwargs map[string]interface{} `json:"kwargs,omitempty"`
}

// reply is the response envelope the child sends back: {call_id,
// return}.
type reply struct {
	CallID string      `json:"call_id"`
	Return interface{} `json:"return"`
	Error  string      `json:"error,omitempty"`
}

// Proxy runs a Manager in a child process and drives it over a
// bidirectional newline-delimited JSON pipe, for processors that must
// run under a different OS identity or be killable independently of
// the parent.
type Proxy struct {
	cmd           *exec.Cmd
	stdin         io.WriteCloser
	encoder       *json.Encoder
	ipcTimeout    time.Duration
	shutdownWait  time.Duration
	logger        logrus.FieldLogger
	seq           uint64

	mu      sync.Mutex
	pending map[string]chan reply

	readerDone chan struct{}
}

// NewProxy launches name with args as a child process and returns a
// Proxy ready to issue calls against it. The child is expected to read
// one JSON call object per line from stdin and write one JSON reply
// object per line to stdout.
func NewProxy(ctx context.Context, name string, args []string, logger logrus.FieldLogger) (*Proxy, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("node: proxy stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("node: proxy stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("node: proxy failed to start child: %w", err)
	}

	p := &Proxy{
		cmd:          cmd,
		stdin:        stdin,
		encoder:      json.NewEncoder(stdin),
		ipcTimeout:   DefaultIPCTimeout,
		shutdownWait: DefaultShutdownTimeout,
		logger:       logger,
		pending:      map[string]chan reply{},
		readerDone:   make(chan struct{}),
	}

	go p.readLoop(stdout)

	return p, nil
}

func (p *Proxy) readLoop(stdout io.ReadCloser) {
	defer close(p.readerDone)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		var r reply
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			p.logger.WithError(err).Warn("proxy: malformed reply from child, dropping")
			continue
		}

		p.mu.Lock()
		ch, ok := p.pending[r.CallID]
		if ok {
			delete(p.pending, r.CallID)
		}
		p.mu.Unlock()

		if !ok {
			p.logger.WithField("call_id", r.CallID).Warn("proxy: reply with unknown call_id, dropping")
			continue
		}

		ch <- r
	}
}

// Call sends method(args, kwargs) to the child and waits for its
// reply, failing with ErrIPCTimeout if none arrives within the
// configured IPC timeout.
func (p *Proxy) Call(method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	id := uuid.NewString()
	atomic.AddUint64(&p.seq, 1)

	waiter := make(chan reply, 1)

	p.mu.Lock()
	p.pending[id] = waiter
	p.mu.Unlock()

	req := call{CallID: id, Method: method, Args: args, Kwargs: kwargs}
	if err := p.encoder.Encode(req); err != nil {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, fmt.Errorf("node: proxy failed to send call: %w", err)
	}

	select {
	case r := <-waiter:
		if r.CallID != id {
			return nil, fmt.Errorf("node: proxy reply call_id mismatch: got %q want %q", r.CallID, id)
		}
		if r.Error != "" {
			return nil, fmt.Errorf("node: proxy child error: %s", r.Error)
		}
		return r.Return, nil
	case <-time.After(p.ipcTimeout):
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, ErrIPCTimeout
	}
}

// Stop asks the child to stop gracefully, waits up to the shutdown
// timeout, then forcibly terminates it.
func (p *Proxy) Stop() error {
	_, callErr := p.Call("stop", nil, nil)

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		p.stdin.Close()
		return err
	case <-time.After(p.shutdownWait):
		p.logger.Warn("proxy: child did not exit in time, killing")
		if err := p.cmd.Process.Kill(); err != nil {
			p.stdin.Close()
			return fmt.Errorf("node: proxy failed to kill child: %w", err)
		}
		<-done
		p.stdin.Close()
		return callErr
	}
}
