// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"fmt"

	"github.com/bureau-foundation/turtlebridge/lib/mission"
)

// TurtleStatus is the state of the robot's current goal. The first ten
// values are the actionlib GoalStatus codes.
type TurtleStatus int

const (
	StatusPending TurtleStatus = iota
	StatusActive
	StatusPreempted
	StatusSucceeded
	StatusAborted
	StatusRejected
	StatusPreempting
	StatusRecalling
	StatusRecalled
	StatusLost

	// StatusFailure is set locally when a task times out. move_base
	// never reports it.
	StatusFailure

	// StatusUnknown covers codes outside the actionlib range and a
	// status topic with nothing on it.
	StatusUnknown
)

var statusNames = [...]string{
	StatusPending:    "pending",
	StatusActive:     "active",
	StatusPreempted:  "preempted",
	StatusSucceeded:  "succeeded",
	StatusAborted:    "aborted",
	StatusRejected:   "rejected",
	StatusPreempting: "preempting",
	StatusRecalling:  "recalling",
	StatusRecalled:   "recalled",
	StatusLost:       "lost",
	StatusFailure:    "failure",
	StatusUnknown:    "unknown",
}

func (s TurtleStatus) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("TurtleStatus(%d)", int(s))
}

// StatusFromCode maps an actionlib GoalStatus code.
func StatusFromCode(code int) TurtleStatus {
	if code < int(StatusPending) || code > int(StatusLost) {
		return StatusUnknown
	}
	return TurtleStatus(code)
}

// MissionStatus maps s to the status reported to the host.
func (s TurtleStatus) MissionStatus() mission.Status {
	switch s {
	case StatusPending:
		return mission.StatusPending
	case StatusActive, StatusPreempting, StatusRecalling:
		return mission.StatusInProgress
	case StatusSucceeded:
		return mission.StatusCompleted
	case StatusPreempted, StatusAborted, StatusRejected, StatusRecalled, StatusLost, StatusFailure:
		return mission.StatusFailed
	default:
		return mission.StatusUnexpected
	}
}
