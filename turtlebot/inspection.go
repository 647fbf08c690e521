// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/turtlebridge/capture"
	"github.com/bureau-foundation/turtlebridge/lib/clock"
	"github.com/bureau-foundation/turtlebridge/lib/geometry"
)

// Orchestrator runs inspections: drive to a pose facing the target,
// then capture one image.
type Orchestrator struct {
	dispatcher *Dispatcher
	correlator *Correlator
	capture    *capture.Channel
	pose       func() (geometry.Pose, error)
	clock      clock.Clock
	timeout    time.Duration

	// shared makes the capture phase inherit the navigation phase's
	// deadline instead of starting a fresh one.
	shared bool

	// onStatus receives the inspection status as it changes.
	onStatus func(TurtleStatus)

	logger *slog.Logger
}

// Run performs one inspection of target and returns the run identifier
// of its navigation goal.
//
// The navigation deadline starts once the goal is accepted. With a
// shared deadline the capture phase must finish before the same
// instant; otherwise it gets a full timeout of its own. On expiry Run
// returns an *InspectionTimeoutError naming the phase, together with
// the run identifier, and reports StatusFailure.
func (o *Orchestrator) Run(ctx context.Context, target geometry.Position) (RunID, error) {
	o.onStatus(StatusActive)

	current, err := o.pose()
	if err != nil {
		o.onStatus(StatusFailure)
		return "", fmt.Errorf("computing inspection pose: %w", err)
	}

	runID, err := o.dispatcher.Dispatch(ctx, geometry.InspectionPose(current, target))
	if err != nil {
		o.onStatus(StatusFailure)
		return "", err
	}
	logger := o.logger.With("run_id", runID)

	deadline := o.clock.Now().Add(o.timeout)
	arrived, err := waitUntil(ctx, o.clock, deadline, o.correlator.Updated, func() bool {
		return o.correlator.NavigationStatus() == StatusSucceeded
	})
	if err != nil {
		o.onStatus(StatusFailure)
		return runID, err
	}
	if !arrived {
		o.onStatus(StatusFailure)
		logger.Warn("inspection pose not reached in time", "timeout", o.timeout)
		return runID, &InspectionTimeoutError{Phase: PhaseNavigation, RunID: runID}
	}
	logger.Info("reached inspection pose")

	slot, err := o.capture.Arm()
	if err != nil {
		o.onStatus(StatusFailure)
		return runID, fmt.Errorf("arming capture: %w", err)
	}
	if err := o.capture.Bind(slot, string(runID)); err != nil {
		o.capture.Disarm()
		o.onStatus(StatusFailure)
		return runID, fmt.Errorf("binding capture: %w", err)
	}

	if !o.shared {
		deadline = o.clock.Now().Add(o.timeout)
	}
	stored, err := waitUntil(ctx, o.clock, deadline, o.capture.StoredSignal, o.capture.Stored)
	if err != nil {
		o.capture.Disarm()
		o.onStatus(StatusFailure)
		return runID, err
	}
	if !stored {
		o.capture.Disarm()
		o.onStatus(StatusFailure)
		logger.Warn("image not stored in time", "timeout", o.timeout, "shared_deadline", o.shared)
		return runID, &InspectionTimeoutError{Phase: PhaseCapture, RunID: runID}
	}

	logger.Info("inspection image stored", "sequence", slot.Sequence)
	o.onStatus(StatusSucceeded)
	return runID, nil
}
