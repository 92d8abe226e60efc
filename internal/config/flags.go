// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-s server base URL the client talks to
//	-device device id whose state is queued
//	-actor actor id used in version vectors
//	-driver queue storage driver (sqlite|bolt)
//	-q queue database path
//	-a state server listen address host:port
//	-d state server database DSN
//	-sync-interval background replay period (e.g. "1m")
//	-probe-interval connectivity probe period (e.g. "10s")
//	-request-timeout outbound request timeout (e.g. "15s")
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var (
		serverURL      string
		deviceID       string
		actorID        string
		storageDriver  string
		queuePath      string
		listenAddress  string
		databaseDSN    string
		syncInterval   time.Duration
		probeInterval  time.Duration
		requestTimeout time.Duration
		jsonConfigPath string
	)

	flag.StringVar(&serverURL, "s", "", "State server base URL")
	flag.StringVar(&deviceID, "device", "", "Device id")
	flag.StringVar(&actorID, "actor", "", "Actor id for version vectors")
	flag.StringVar(&storageDriver, "driver", "", "Queue storage driver (sqlite|bolt)")
	flag.StringVar(&queuePath, "q", "", "Queue database path")
	flag.StringVar(&listenAddress, "a", "", "State server listen address host:port")
	flag.StringVar(&databaseDSN, "d", "", "State server database DSN")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background replay period (e.g. 1m)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe period (e.g. 10s)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g. 15s)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Client: Client{
			ServerURL:      serverURL,
			DeviceID:       deviceID,
			ActorID:        actorID,
			StorageDriver:  storageDriver,
			QueuePath:      queuePath,
			RequestTimeout: requestTimeout,
			SyncInterval:   syncInterval,
			ProbeInterval:  probeInterval,
		},
		Server: Server{
			HTTPAddress: listenAddress,
			DatabaseDSN: databaseDSN,
		},
		JSONFilePath: jsonConfigPath,
	}
}
