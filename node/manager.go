package node

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psi-streaming/nodeflow/message"
	"github.com/psi-streaming/nodeflow/transport"
)

// DefaultStartupTimeout bounds how long Start waits for every worker's
// live flag to go set.
const DefaultStartupTimeout = 5 * time.Second

// DefaultReceiverCount is the number of receiver workers spawned when
// none is configured.
const DefaultReceiverCount = 1

// ManagerConfig configures one Manager instance. Fields left at their
// zero value fall back to the package defaults.
type ManagerConfig struct {
	Processor       Processor
	Dialer          transport.ReceiverDialer
	TransportOpts   transport.Options
	Registry        *message.Registry
	RawMode         bool
	DataQueueLength int
	ReceiverCount   int
	StartupTimeout  time.Duration
	PollTimeout     time.Duration
	StatsCapacity   int
	Logger          logrus.FieldLogger
	InstanceName    string
}

// Manager supervises one processor worker and its receiver group,
// holds the authoritative current-parameters map and statistics ring,
// and exposes the synchronous control API the control plane drives.
type Manager struct {
	cfg ManagerConfig
	log logrus.FieldLogger
	tel *telemetry

	params *parameters
	stats  *StatisticsRing

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup
	procLive  *liveFlag
	recvLives []*liveFlag
	paramQ    *parameterQueue
}

// NewManager builds a Manager from cfg, applying defaults for any
// zero-valued field.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.ReceiverCount <= 0 {
		cfg.ReceiverCount = DefaultReceiverCount
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = DefaultStartupTimeout
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.TransportOpts.ReceiveTimeout <= 0 {
		cfg.TransportOpts.ReceiveTimeout = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Registry == nil {
		cfg.Registry = message.NewDefaultRegistry(cfg.Logger)
	}

	return &Manager{
		cfg:    cfg,
		log:    cfg.Logger,
		tel:    newTelemetry(cfg.InstanceName),
		params: newParameters(),
		stats:  NewStatisticsRing(cfg.StatsCapacity),
		paramQ: newParameterQueue(),
	}
}

// Start spawns the processor worker and the configured number of
// receiver workers, waits for every one to report liveness, and
// returns once the node is fully up.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunningLocked() {
		return ErrAlreadyRunning
	}

	m.stopLocked()

	queue := newDataQueue(m.cfg.DataQueueLength)
	m.stats = NewStatisticsRing(m.cfg.StatsCapacity)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	procLive := newLiveFlag()
	recvLives := make([]*liveFlag, m.cfg.ReceiverCount)

	for _, p := range m.params.OrderedList() {
		m.paramQ.Push(p)
	}

	proc := &processorWorker{
		processor: m.cfg.Processor,
		queue:     queue,
		params:    m.paramQ,
		stats:     m.stats,
		live:      procLive,
		pollEvery: m.cfg.PollTimeout,
		logger:    m.log,
		tel:       m.tel,
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		proc.run(ctx, done)
	}()

	receivers := make([]*receiverWorker, m.cfg.ReceiverCount)
	for i := 0; i < m.cfg.ReceiverCount; i++ {
		live := newLiveFlag()
		recvLives[i] = live

		r := &receiverWorker{
			id:       i,
			dialer:   m.cfg.Dialer,
			opts:     m.cfg.TransportOpts,
			registry: m.cfg.Registry,
			rawMode:  m.cfg.RawMode,
			queue:    queue,
			live:     live,
			logger:   m.log,
			tel:      m.tel,
		}
		receivers[i] = r

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			r.run(ctx, done)
		}()
	}

	allLive := append([]*liveFlag{procLive}, recvLives...)
	if !waitAllLive(allLive, m.cfg.StartupTimeout) {
		for _, f := range allLive {
			f.Clear()
		}
		cancel()
		close(done)
		m.wg.Wait()
		return ErrStartupFailed
	}

	m.cancel = cancel
	m.done = done
	m.procLive = procLive
	m.recvLives = recvLives
	m.running = true

	return nil
}

// Stop clears every live flag, cancels worker context, and waits for
// every worker to exit. It is idempotent and safe to call from any
// state.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	return nil
}

// stopLocked performs the actual teardown; the caller must hold m.mu.
func (m *Manager) stopLocked() {
	if !m.running && m.cancel == nil {
		return
	}

	if m.procLive != nil {
		m.procLive.Clear()
	}
	for _, f := range m.recvLives {
		f.Clear()
	}

	if m.done != nil {
		close(m.done)
	}
	if m.cancel != nil {
		m.cancel()
	}

	m.wg.Wait()

	m.running = false
	m.cancel = nil
	m.done = nil
	m.procLive = nil
	m.recvLives = nil
}

// IsRunning reports whether the processor worker and every receiver
// worker are alive with their live flags set. Partial liveness (one
// worker died on its own) is reported as false.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.isRunningLocked()
}

// isRunningLocked is the actual liveness check Start and IsRunning both
// gate on; the caller must hold m.mu. It is not enough for Start to
// have once succeeded (m.running stays true until Stop runs) — a
// worker that died on its own clears only its own live flag, so a
// stale m.running must never by itself block a restart.
func (m *Manager) isRunningLocked() bool {
	if !m.running {
		return false
	}

	if !m.procLive.IsSet() {
		return false
	}
	for _, f := range m.recvLives {
		if !f.IsSet() {
			return false
		}
	}

	return true
}

// SetParameters merges updates into the current-parameters map and
// enqueues each onto the parameter queue for asynchronous application
// by the processor worker.
func (m *Manager) SetParameters(updates map[string]interface{}) {
	for _, p := range m.params.SetAll(updates) {
		m.paramQ.Push(p)
	}
}

// GetParameters returns a snapshot of current parameters overlaid on
// the processor's own declared defaults (processor defaults first,
// node overrides last). The returned map has no key order;
// GetParametersOrdered gives the node's own overrides in insertion
// order.
func (m *Manager) GetParameters() map[string]interface{} {
	out := map[string]interface{}{}

	if m.cfg.Processor != nil {
		for k, v := range m.cfg.Processor.CurrentParameters() {
			out[k] = v
		}
	}
	for k, v := range m.params.Snapshot() {
		out[k] = v
	}

	return out
}

// GetParametersOrdered is like GetParameters but returns the node's
// own overrides as an insertion-ordered list suitable for JSON
// marshaling that preserves key order.
func (m *Manager) GetParametersOrdered() orderedParameters {
	return orderedParameters(m.params.OrderedList())
}

// GetStatistics returns aggregated throughput rates over the ring.
func (m *Manager) GetStatistics() Aggregate {
	return m.stats.Aggregate()
}

// GetStatisticsRaw returns a copy of the ring's raw samples.
func (m *Manager) GetStatisticsRaw() []StatisticsSample {
	return m.stats.Raw()
}

// Describe returns the processor's self-description.
func (m *Manager) Describe() string {
	if m.cfg.Processor == nil {
		return ""
	}
	return m.cfg.Processor.Describe()
}

// Reset invokes the processor's Reset hook if it implements Resetter;
// otherwise it is a no-op.
func (m *Manager) Reset() error {
	if r, ok := m.cfg.Processor.(Resetter); ok {
		return r.Reset()
	}
	return nil
}
