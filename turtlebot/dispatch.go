// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/turtlebridge/lib/clock"
	"github.com/bureau-foundation/turtlebridge/lib/geometry"
	"github.com/bureau-foundation/turtlebridge/rosbridge"
)

// Dispatcher publishes navigation goals and waits for move_base to
// accept them.
type Dispatcher struct {
	goal       *rosbridge.Topic[MoveBaseActionGoal]
	correlator *Correlator
	clock      clock.Clock
	timeout    time.Duration
	logger     *slog.Logger
}

// Dispatch publishes a goal for pose and returns its run identifier
// once the status topic shows a run identifier different from the one
// seen before publishing. If none appears within the dispatch timeout
// it returns a *DispatchTimeoutError. The timeout counts from the call,
// so time spent publishing is part of it.
//
// Another publisher of goals can be mistaken for acceptance of this
// one; the adapter assumes it is the robot's only commander.
func (d *Dispatcher) Dispatch(ctx context.Context, pose geometry.Pose) (RunID, error) {
	deadline := d.clock.Now().Add(d.timeout)
	previous, hadPrevious := d.correlator.Current()

	if err := d.goal.Publish(NewMoveBaseActionGoal(pose)); err != nil {
		return "", fmt.Errorf("publishing navigation goal: %w", err)
	}
	d.logger.Info("published navigation goal",
		"x", pose.Position.X,
		"y", pose.Position.Y,
		"previous_run_id", previous,
	)

	var accepted RunID
	changed := func() bool {
		current, ok := d.correlator.Current()
		if !ok || (hadPrevious && current == previous) {
			return false
		}
		accepted = current
		return true
	}

	ok, err := waitUntil(ctx, d.clock, deadline, d.correlator.Updated, changed)
	if err != nil {
		return "", err
	}
	if !ok {
		lastKnown, _ := d.correlator.Current()
		return "", &DispatchTimeoutError{LastKnown: lastKnown}
	}

	d.logger.Info("navigation goal accepted", "run_id", accepted)
	return accepted, nil
}
