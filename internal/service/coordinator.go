// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package service

import (
	"fmt"

	"github.com/telecare-labs/offsync/internal/adapter"
	"github.com/telecare-labs/offsync/models"
)

// replayCoordinator translates queued actions into transition requests. It
// is the single place that knows which remote operation each action kind
// maps onto; the engine treats all kinds uniformly.
type replayCoordinator struct {
	actorID string
}

func newReplayCoordinator(actorID string) *replayCoordinator {
	return &replayCoordinator{actorID: actorID}
}

// BuildRequest assembles the transition request for one queued action. The
// action id becomes the operation id the server journals, so resubmitting
// the same action is detectable on the server side.
func (c *replayCoordinator) BuildRequest(action models.QueuedAction, expectedVersion int64) (models.TransitionRequest, error) {
	digest, err := models.PayloadDigestOf(action.Payload)
	if err != nil {
		return models.TransitionRequest{}, fmt.Errorf("digest payload of action %s: %w", action.ID, err)
	}

	req := models.TransitionRequest{
		OperationID:     action.ID,
		Kind:            action.Kind,
		ExpectedVersion: expectedVersion,
		PayloadDigest:   digest,
		Context:         map[string]string{"actor": c.actorID},
	}

	switch payload := action.Payload.(type) {
	case models.UpdateStatePayload:
		req.NewState = payload.Target
	case models.AckAlertPayload:
		req.Context["alert_id"] = payload.AlertID
		if payload.Comment != "" {
			req.Context["comment"] = payload.Comment
		}
	case models.RecordNotePayload:
		req.Context["author"] = payload.Author
		req.Context["text"] = payload.Text
	default:
		return models.TransitionRequest{}, fmt.Errorf("action %s kind %s: %w",
			action.ID, action.Kind, adapter.ErrUnknownAction)
	}

	return req, nil
}
