// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package server

import "errors"

var (
	errNoListenAddress = errors.New("no HTTP listen address configured")
)
