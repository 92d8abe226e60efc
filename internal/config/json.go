// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations for the optional config file.
type StructuredJSONConfig struct {
	Client struct {
		ServerURL      string   `json:"server_url"`
		DeviceID       string   `json:"device_id"`
		ActorID        string   `json:"actor_id"`
		StorageDriver  string   `json:"storage_driver"`
		QueuePath      string   `json:"queue_path"`
		RequestTimeout Duration `json:"request_timeout"`
		SyncInterval   Duration `json:"sync_interval"`
		ProbeInterval  Duration `json:"probe_interval"`
	} `json:"client,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		DatabaseDSN     string   `json:"database_dsn"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Client: Client{
			ServerURL:      jsonCfg.Client.ServerURL,
			DeviceID:       jsonCfg.Client.DeviceID,
			ActorID:        jsonCfg.Client.ActorID,
			StorageDriver:  jsonCfg.Client.StorageDriver,
			QueuePath:      jsonCfg.Client.QueuePath,
			RequestTimeout: time.Duration(jsonCfg.Client.RequestTimeout),
			SyncInterval:   time.Duration(jsonCfg.Client.SyncInterval),
			ProbeInterval:  time.Duration(jsonCfg.Client.ProbeInterval),
		},
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			DatabaseDSN:     jsonCfg.Server.DatabaseDSN,
			ShutdownTimeout: time.Duration(jsonCfg.Server.ShutdownTimeout),
		},
	}

	return cfg, nil
}

// Duration wraps time.Duration with JSON unmarshaling from strings like
// "1h" or "30s" as well as plain nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
