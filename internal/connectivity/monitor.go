// Package connectivity tracks whether the remote state service is actually
// reachable, which is a different question from whether a local network
// interface is up. The monitor is tri-state: a channel that was online and
// fails one probe is "reconnecting" before it is declared offline.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/telecare-labs/offsync/internal/logger"
)

// Status is the monitor's view of the remote channel.
type Status int

const (
	Offline Status = iota
	Reconnecting
	Online
)

func (s Status) String() string {
	switch s {
	case Online:
		return "online"
	case Reconnecting:
		return "reconnecting"
	default:
		return "offline"
	}
}

// Listener receives status transitions. Transitions are edge-triggered: a
// listener is never re-notified for an unchanged status.
type Listener func(Status)

// Prober is the minimal remote-channel probe. The HTTP state client
// satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor owns the tri-state connectivity status and its observer registry.
type Monitor struct {
	prober Prober
	logger *logger.Logger

	mu        sync.Mutex
	status    Status
	nextID    int64
	listeners map[int64]Listener
}

// NewMonitor returns a monitor that starts offline; the first successful
// probe (or an explicit SetStatus) brings it online.
func NewMonitor(prober Prober, log *logger.Logger) *Monitor {
	return &Monitor{
		prober:    prober,
		logger:    log,
		status:    Offline,
		listeners: make(map[int64]Listener),
	}
}

// Status returns the current connectivity status.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetStatus records a transition and notifies listeners. Setting the current
// status again is a no-op.
func (m *Monitor) SetStatus(status Status) {
	m.mu.Lock()
	if m.status == status {
		m.mu.Unlock()
		return
	}
	from := m.status
	m.status = status

	notify := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		notify = append(notify, l)
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("from", from.String()).
		Str("to", status.String()).
		Msg("connectivity changed")

	// Listeners run outside the lock so they may call back into the monitor.
	for _, l := range notify {
		l(status)
	}
}

// Subscribe registers a listener, immediately invokes it with the current
// status, and returns an unsubscribe function.
func (m *Monitor) Subscribe(listener Listener) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = listener
	current := m.status
	m.mu.Unlock()

	listener(current)

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Probe performs one reachability check and degrades the status stepwise:
// a failing probe demotes online to reconnecting, and reconnecting to
// offline. A successful probe always promotes straight to online.
func (m *Monitor) Probe(ctx context.Context) Status {
	err := m.prober.Ping(ctx)

	current := m.Status()
	switch {
	case err == nil:
		m.SetStatus(Online)
	case current == Online:
		m.SetStatus(Reconnecting)
	case current == Reconnecting:
		m.SetStatus(Offline)
	}

	return m.Status()
}

// Run probes on a ticker until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	m.Probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Probe(ctx)
		}
	}
}
