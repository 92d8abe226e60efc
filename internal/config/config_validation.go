// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package config

import (
	"errors"
	"fmt"
)

var (
	ErrNoServerURL     = errors.New("no state server url configured")
	ErrNoDeviceID      = errors.New("no device id configured")
	ErrNoQueuePath     = errors.New("no queue database path configured")
	ErrUnknownDriver   = errors.New("unknown queue storage driver")
	ErrNoListenAddress = errors.New("no listen address configured")
)

// validate checks the merged config for contradictions that would surface as
// confusing runtime failures. Binary-specific requirements live in the typed
// views below.
func (c *StructuredConfig) validate() error {
	if c.Client.StorageDriver != DriverSQLite && c.Client.StorageDriver != DriverBolt {
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Client.StorageDriver)
	}

	return nil
}

// ClientConfig is the client binary's view of the structured config.
type ClientConfig struct {
	Client Client
}

// GetClientConfig builds the merged config and validates the fields the
// client runtime cannot run without.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{Client: cfg.Client}
	return clientCfg, clientCfg.validate()
}

func (c *ClientConfig) validate() error {
	if c.Client.ServerURL == "" {
		return ErrNoServerURL
	}
	if c.Client.DeviceID == "" {
		return ErrNoDeviceID
	}
	if c.Client.QueuePath == "" {
		return ErrNoQueuePath
	}

	return nil
}

// ServerConfig is the server binary's view of the structured config.
type ServerConfig struct {
	Server Server
}

// GetServerConfig builds the merged config and validates the server fields.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{Server: cfg.Server}
	return serverCfg, serverCfg.validate()
}

func (c *ServerConfig) validate() error {
	if c.Server.HTTPAddress == "" {
		return ErrNoListenAddress
	}

	return nil
}
