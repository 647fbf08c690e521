// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/turtlebridge/rosbridge"
)

// RunID identifies a navigation goal accepted by move_base. Run
// identifiers compare only for equality.
type RunID string

// runIDPrefix starts every goal id move_base generates.
const runIDPrefix = "move_base-"

// NormalizeRunID turns a raw goal id such as
// "move_base-1-1533746000.123" into a stable token: the prefix is
// stripped, everything from the first "." is dropped (it changes with
// every observation), and "-" separators are removed.
func NormalizeRunID(raw string) RunID {
	id := strings.TrimPrefix(raw, runIDPrefix)
	id, _, _ = strings.Cut(id, ".")
	return RunID(strings.ReplaceAll(id, "-", ""))
}

// Correlator reads the current run identifier and goal status from the
// status topic.
type Correlator struct {
	status *rosbridge.Topic[GoalStatusArray]
	logger *slog.Logger
}

// NewCorrelator reads from the given status topic.
func NewCorrelator(status *rosbridge.Topic[GoalStatusArray], logger *slog.Logger) *Correlator {
	return &Correlator{status: status, logger: logger}
}

// Current returns the run identifier of the most recent goal. It
// reports false, after logging why, when the topic has no message yet
// or the message is malformed.
func (c *Correlator) Current() (RunID, bool) {
	head, err := c.head()
	if err != nil {
		c.logger.Info("no current run id", "error", err)
		return "", false
	}
	if head.GoalID == nil || head.GoalID.ID == nil {
		c.logger.Info("no current run id", "error", fmt.Errorf("%w: status entry has no goal_id.id", ErrMalformedStatus))
		return "", false
	}
	return NormalizeRunID(*head.GoalID.ID), true
}

// NavigationStatus returns the status of the most recent goal, or
// StatusUnknown when it cannot be determined.
func (c *Correlator) NavigationStatus() TurtleStatus {
	head, err := c.head()
	if err != nil || head.Status == nil {
		return StatusUnknown
	}
	return StatusFromCode(*head.Status)
}

// Received reports whether any status message has arrived, including
// one with an empty status list.
func (c *Correlator) Received() bool {
	_, ok := c.status.Value()
	return ok
}

// Updated returns a channel closed by the next status message.
func (c *Correlator) Updated() <-chan struct{} {
	return c.status.Updated()
}

func (c *Correlator) head() (GoalStatus, error) {
	message, ok := c.status.Value()
	if !ok {
		return GoalStatus{}, fmt.Errorf("%w: nothing received on %s", ErrMalformedStatus, c.status.Name())
	}
	if len(message.StatusList) == 0 {
		return GoalStatus{}, fmt.Errorf("%w: empty status_list", ErrMalformedStatus)
	}
	return message.StatusList[0], nil
}
