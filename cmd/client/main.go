package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/telecare-labs/offsync/internal/adapter"
	"github.com/telecare-labs/offsync/internal/config"
	"github.com/telecare-labs/offsync/internal/connectivity"
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/service"
	"github.com/telecare-labs/offsync/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.New("offsync-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	client, err := adapter.NewHTTPStateClient(adapter.HTTPClientConfig{
		BaseURL:        cfg.Client.ServerURL,
		DeviceID:       cfg.Client.DeviceID,
		RequestTimeout: cfg.Client.RequestTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create state client")
	}

	storages, err := store.NewClientStorages(ctx, cfg.Client, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer storages.Close() //nolint:errcheck // process is exiting

	monitor := connectivity.NewMonitor(client, log)
	monitor.SetStatus(connectivity.Online)

	services := service.NewClientServices(storages, client, monitor, cfg.Client, log)

	app := &app{
		cfg:      cfg.Client,
		client:   client,
		monitor:  monitor,
		services: services,
		logger:   log,
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	if err = app.runCommand(ctx, args[0], args[1:]); err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("command failed")
	}
}

func printUsage() {
	fmt.Println(`usage: offsync-client [flags] <command> [args]

commands:
  enqueue [-expected N] update-state <STATE>
  enqueue [-expected N] ack-alert <alert-id> [comment]
  enqueue [-expected N] record-note <author> <text>
  sync                       run one replay session
  pending                    list queued actions
  conflicts [-all]           list conflict records
  resolve <conflict-id>      mark a conflict record handled
  watch                      run the background sync worker until interrupted`)
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
