// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// offsync client and the reference state server.
//
// Struct tags:
//   - envPrefix — prefix applied to nested env lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Client holds settings for the offline client runtime.
	Client Client `envPrefix:"CLIENT_"`

	// Server holds settings for the reference state server.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file merged
	// on top of env and flag values. Populated via CONFIG or -c/-config.
	JSONFilePath string `env:"CONFIG"`
}

// Client configures the offline client: where the remote authority lives,
// where the durable queue is stored, and how the background worker behaves.
type Client struct {
	// ServerURL is the base URL of the remote state service.
	// Env: CLIENT_SERVER_URL
	ServerURL string `env:"SERVER_URL"`

	// DeviceID identifies the monitored device whose state this client
	// queues transitions for.
	// Env: CLIENT_DEVICE_ID
	DeviceID string `env:"DEVICE_ID"`

	// ActorID identifies this client in version vectors. Defaults to
	// DeviceID when empty.
	// Env: CLIENT_ACTOR_ID
	ActorID string `env:"ACTOR_ID"`

	// StorageDriver selects the durable queue backend: "sqlite" or "bolt".
	// Env: CLIENT_STORAGE_DRIVER
	StorageDriver string `env:"STORAGE_DRIVER"`

	// QueuePath is the database file path of the durable queue.
	// Env: CLIENT_QUEUE_PATH
	QueuePath string `env:"QUEUE_PATH"`

	// RequestTimeout bounds every outbound request to the state service.
	// Env: CLIENT_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// SyncInterval is the background worker's replay period.
	// Env: CLIENT_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval is how often the connectivity monitor probes the remote
	// channel while offline or reconnecting.
	// Env: CLIENT_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Server configures the reference state server.
type Server struct {
	// HTTPAddress is the listen address in "host:port" form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// DatabaseDSN is the PostgreSQL connection string for the state store.
	// When empty the server keeps state in memory.
	// Env: SERVER_DATABASE_DSN
	DatabaseDSN string `env:"DATABASE_DSN"`

	// ShutdownTimeout bounds graceful shutdown.
	// Env: SERVER_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Storage driver names accepted in Client.StorageDriver.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// GetStructuredConfig builds the merged configuration from environment
// variables, command-line flags, and the optional JSON file, then applies
// defaults and validates the result.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}

func (c *StructuredConfig) applyDefaults() {
	if c.Client.StorageDriver == "" {
		c.Client.StorageDriver = DriverSQLite
	}
	if c.Client.ActorID == "" {
		c.Client.ActorID = c.Client.DeviceID
	}
	if c.Client.RequestTimeout <= 0 {
		c.Client.RequestTimeout = 15 * time.Second
	}
	if c.Client.SyncInterval <= 0 {
		c.Client.SyncInterval = time.Minute
	}
	if c.Client.ProbeInterval <= 0 {
		c.Client.ProbeInterval = 10 * time.Second
	}
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = "localhost:8080"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
}
