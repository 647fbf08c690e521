// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the adapter's
// deadline-bounded waits.
//
// Every wait in turtlebridge (dispatch acknowledgement, navigation
// completion, image capture) selects on a wake-up channel, a deadline
// [Timer], and a context. Production code passes Real(); tests pass
// Fake() and drive the deadline explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go func() { runID, err := dispatcher.Dispatch(ctx, pose); results <- outcome{runID, err} }()
//	c.WaitForTimers(1)          // the wait registered its deadline
//	c.Advance(20 * time.Second) // expire it deterministically
//
// WaitForTimers removes the race between a goroutine registering its
// deadline timer and the test advancing time. Stopped timers are not
// counted, so a wait that finished early does not satisfy a later
// WaitForTimers call.
package clock
