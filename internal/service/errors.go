package service

import "errors"

var (
	ErrNilPayload = errors.New("no action payload provided")

	// ErrOffline is returned by Sync when the connectivity monitor reports
	// the remote channel as unreachable. The queue is untouched.
	ErrOffline = errors.New("remote channel offline")

	// Server-side transition validation failures.
	ErrNoDeviceID           = errors.New("no device id provided")
	ErrUnknownState         = errors.New("unknown care state")
	ErrUnknownKind          = errors.New("unknown action kind")
	ErrTransitionNotAllowed = errors.New("transition not allowed from current state")
	ErrPolicyBlocked        = errors.New("transitions blocked by policy override")
)
