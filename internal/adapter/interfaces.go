// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

// Package adapter provides the transport-layer abstraction for talking to
// the remote state service.
//
// The primary abstraction is [StateClient], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPStateClient]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] / [errors.As] for
// transport-agnostic outcome handling (e.g. [ErrBlocked] for 423,
// [*VersionConflictError] for 409).
package adapter

import (
	"context"

	"github.com/telecare-labs/offsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/state_client_mock.go -package=mock

// StateClient is the client of the remote, version-authoritative state
// service. One client instance is bound to one device.
type StateClient interface {
	// FetchState returns the current authoritative snapshot, or
	// ErrStateNotFound if the device has no state document yet. Transport
	// failures surface as wrapped ErrNetwork.
	FetchState(ctx context.Context) (models.StateSnapshot, error)

	// SubmitTransition sends a single versioned transition request. Exactly
	// one outcome is returned: the success result, or one of the typed
	// errors in errors.go.
	SubmitTransition(ctx context.Context, req models.TransitionRequest) (models.TransitionResult, error)

	// VerifyBatch asks the server to confirm it applied exactly the ordered
	// operation set summarised by req.Digest.
	VerifyBatch(ctx context.Context, req models.VerifyRequest) (models.VerifyResponse, error)

	// Ping probes the remote channel. Used by the connectivity monitor to
	// distinguish "local network up" from "service reachable".
	Ping(ctx context.Context) error
}
