// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

// Package config assembles the offsync configuration from three sources and
// merges them with dario.cat/mergo, earlier sources winning:
//
//  1. environment variables (caarlos0/env struct tags),
//  2. command-line flags,
//  3. an optional JSON file named by CONFIG / -c.
//
// The merged result is validated before use. Client and server binaries each
// take their own typed view of the shared structured config.
package config
