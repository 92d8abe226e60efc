// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/telecare-labs/offsync/internal/connectivity"
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/service"
)

// SyncWorker drives the sync engine in the background: once per interval,
// and immediately whenever connectivity returns after an offline period.
// Both triggers funnel into the engine's own single-session guard, so
// overlapping triggers collapse into one replay session.
type SyncWorker struct {
	engine   service.SyncEngine
	monitor  *connectivity.Monitor
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSyncWorker(engine service.SyncEngine, monitor *connectivity.Monitor, interval time.Duration, log *logger.Logger) *SyncWorker {
	return &SyncWorker{
		engine:   engine,
		monitor:  monitor,
		interval: interval,
		logger:   log,
	}
}

// Start implements Worker. It stops any previously running instance, then
// launches the background loop. If interval is zero or negative it defaults
// to 1 minute.
func (w *SyncWorker) Start(ctx context.Context) {
	interval := w.interval
	if interval <= 0 {
		interval = time.Minute
	}

	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	// kick is buffered so a reconnect during a running session queues
	// exactly one follow-up sync instead of blocking the listener.
	kick := make(chan struct{}, 1)

	previous := w.monitor.Status()
	unsubscribe := w.monitor.Subscribe(func(status connectivity.Status) {
		if status == connectivity.Online && previous != connectivity.Online {
			select {
			case kick <- struct{}{}:
			default:
			}
		}
		previous = status
	})

	go func() {
		defer w.wg.Done()
		defer unsubscribe()

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				w.sync(jobCtx)
			case <-kick:
				w.logger.Info().Msg("connectivity restored, triggering sync")
				w.sync(jobCtx)
			}
		}
	}()
}

// Stop implements Worker. It cancels the background loop and blocks until it
// has fully exited. Safe to call when the worker is not running.
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *SyncWorker) sync(ctx context.Context) {
	if _, err := w.engine.Sync(ctx); err != nil && !errors.Is(err, service.ErrOffline) {
		w.logger.Err(err).Msg("background sync failed")
	}
}
