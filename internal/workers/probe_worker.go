package workers

import (
	"context"
	"sync"
	"time"

	"github.com/telecare-labs/offsync/internal/connectivity"
)

// ProbeWorker keeps the connectivity monitor's view fresh by probing the
// remote channel on a fixed interval.
type ProbeWorker struct {
	monitor  *connectivity.Monitor
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewProbeWorker(monitor *connectivity.Monitor, interval time.Duration) *ProbeWorker {
	return &ProbeWorker{monitor: monitor, interval: interval}
}

// Start implements Worker. If interval is zero or negative it defaults to
// 15 seconds.
func (w *ProbeWorker) Start(ctx context.Context) {
	interval := w.interval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		w.monitor.Run(jobCtx, interval)
	}()
}

// Stop implements Worker.
func (w *ProbeWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}
