// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"context"
	"time"

	"github.com/bureau-foundation/turtlebridge/lib/clock"
)

// waitUntil blocks until condition holds, deadline passes, or ctx is
// done. It re-evaluates condition each time the channel returned by
// updated is closed; updated is called before every evaluation so no
// update between the two is missed. A condition that already holds
// returns without starting a timer. When the deadline fires the
// condition gets one last look.
//
// Returns (true, nil) when the condition held, (false, nil) on
// deadline, and (false, ctx.Err()) on cancellation.
func waitUntil(ctx context.Context, c clock.Clock, deadline time.Time, updated func() <-chan struct{}, condition func() bool) (bool, error) {
	if condition() {
		return true, nil
	}

	timer := c.NewTimer(clock.Deadline(c, deadline))
	defer timer.Stop()

	for {
		wake := updated()
		if condition() {
			return true, nil
		}
		select {
		case <-wake:
		case <-timer.C:
			return condition(), nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
