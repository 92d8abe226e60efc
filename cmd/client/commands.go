// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/telecare-labs/offsync/internal/adapter"
	"github.com/telecare-labs/offsync/internal/config"
	"github.com/telecare-labs/offsync/internal/connectivity"
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/service"
	"github.com/telecare-labs/offsync/internal/workers"
	"github.com/telecare-labs/offsync/models"
)

type app struct {
	cfg      config.Client
	client   adapter.StateClient
	monitor  *connectivity.Monitor
	services *service.ClientServices
	logger   *logger.Logger
}

func (a *app) runCommand(ctx context.Context, command string, args []string) error {
	switch command {
	case "enqueue":
		return a.enqueue(ctx, args)
	case "sync":
		return a.sync(ctx)
	case "pending":
		return a.pending(ctx)
	case "conflicts":
		return a.conflicts(ctx, args)
	case "resolve":
		return a.resolve(ctx, args)
	case "watch":
		return a.watch(ctx)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) enqueue(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	expected := fs.Int64("expected", 0, "Remote version the action is anchored at (0 = fetch current)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("enqueue needs an action kind")
	}

	payload, err := buildPayload(rest[0], rest[1:])
	if err != nil {
		return err
	}

	expectedVersion := *expected
	if expectedVersion == 0 {
		snapshot, err := a.client.FetchState(ctx)
		if err != nil {
			return fmt.Errorf("no -expected given and current version unavailable: %w", err)
		}
		expectedVersion = snapshot.Version
	}

	action, err := a.services.Queue.Enqueue(ctx, payload, expectedVersion, nil)
	if err != nil {
		return err
	}

	fmt.Printf("enqueued %s %s at expected version %d\n", action.Kind, action.ID, action.ExpectedVersion)
	return nil
}

func buildPayload(kind string, args []string) (models.ActionPayload, error) {
	switch kind {
	case "update-state":
		if len(args) != 1 {
			return nil, errors.New("update-state needs a target state")
		}
		return models.UpdateStatePayload{Target: models.CareState(strings.ToUpper(args[0]))}, nil

	case "ack-alert":
		if len(args) < 1 {
			return nil, errors.New("ack-alert needs an alert id")
		}
		payload := models.AckAlertPayload{AlertID: args[0]}
		if len(args) > 1 {
			payload.Comment = strings.Join(args[1:], " ")
		}
		return payload, nil

	case "record-note":
		if len(args) < 2 {
			return nil, errors.New("record-note needs an author and a text")
		}
		return models.RecordNotePayload{Author: args[0], Text: strings.Join(args[1:], " ")}, nil

	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
}

func (a *app) sync(ctx context.Context) error {
	summary, err := a.services.Engine.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("processed %d, succeeded %d, failed %d, discarded %d\n",
		summary.Processed, summary.Succeeded, summary.Failed, summary.Discarded)
	if summary.Halted != "" {
		fmt.Printf("batch halted early (%s), remaining actions stay queued\n", summary.Halted)
	}
	if summary.DigestMismatch {
		fmt.Println("WARNING: batch verification digest mismatch, inspect the server journal")
	}
	return nil
}

func (a *app) pending(ctx context.Context) error {
	actions, err := a.services.Queue.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		fmt.Println("queue is empty")
		return nil
	}

	for _, action := range actions {
		fmt.Printf("%s  %-12s  expected=%d  retries=%d  status=%s  enqueued=%s\n",
			action.ID, action.Kind, action.ExpectedVersion, action.RetryCount,
			action.Status, action.EnqueuedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *app) conflicts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("conflicts", flag.ExitOnError)
	all := fs.Bool("all", false, "Include resolved records")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records, err := a.services.Conflicts.List(ctx, *all)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no conflicts")
		return nil
	}

	for _, record := range records {
		status := "unresolved"
		if record.Resolved {
			status = "resolved"
		}
		fmt.Printf("%s  %-12s  local=%d server=%d  %s  detected=%s\n  payload: %s\n",
			record.ID, record.Kind, record.LocalVersion, record.ServerVersion,
			status, record.DetectedAt.Format("2006-01-02 15:04:05"), record.LocalPayload)
	}
	return nil
}

func (a *app) resolve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("resolve needs a conflict id")
	}
	if err := a.services.Conflicts.Resolve(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("conflict %s resolved\n", args[0])
	return nil
}

func (a *app) watch(ctx context.Context) error {
	unsubscribeSummary := a.services.Engine.OnSyncComplete(func(summary models.SyncSummary) {
		fmt.Printf("sync: processed %d, succeeded %d, failed %d, discarded %d\n",
			summary.Processed, summary.Succeeded, summary.Failed, summary.Discarded)
	})
	defer unsubscribeSummary()

	unsubscribeStatus := a.monitor.Subscribe(func(status connectivity.Status) {
		fmt.Printf("connectivity: %s\n", status)
	})
	defer unsubscribeStatus()

	pool := workers.NewWorkers(
		workers.NewProbeWorker(a.monitor, a.cfg.ProbeInterval),
		workers.NewSyncWorker(a.services.Engine, a.monitor, a.cfg.SyncInterval, a.logger),
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool.Start(runCtx)
	fmt.Fprintln(os.Stderr, "watching, press Ctrl+C to stop")
	<-runCtx.Done()
	pool.Stop()

	return nil
}
