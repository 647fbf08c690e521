// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"testing"

	"github.com/bureau-foundation/turtlebridge/lib/mission"
)

func TestStatusFromCode(t *testing.T) {
	for code := 0; code <= 9; code++ {
		if got := StatusFromCode(code); int(got) != code {
			t.Errorf("StatusFromCode(%d) = %v", code, got)
		}
	}
	for _, code := range []int{-1, 10, 11, 255} {
		if got := StatusFromCode(code); got != StatusUnknown {
			t.Errorf("StatusFromCode(%d) = %v, want unknown", code, got)
		}
	}
}

func TestMissionStatusMapping(t *testing.T) {
	tests := map[TurtleStatus]mission.Status{
		StatusPending:    mission.StatusPending,
		StatusActive:     mission.StatusInProgress,
		StatusPreempted:  mission.StatusFailed,
		StatusSucceeded:  mission.StatusCompleted,
		StatusAborted:    mission.StatusFailed,
		StatusRejected:   mission.StatusFailed,
		StatusPreempting: mission.StatusInProgress,
		StatusRecalling:  mission.StatusInProgress,
		StatusRecalled:   mission.StatusFailed,
		StatusLost:       mission.StatusFailed,
		StatusFailure:    mission.StatusFailed,
		StatusUnknown:    mission.StatusUnexpected,
	}
	for status, want := range tests {
		if got := status.MissionStatus(); got != want {
			t.Errorf("%v.MissionStatus() = %q, want %q", status, got, want)
		}
	}
}

func TestTurtleStatusString(t *testing.T) {
	if got := StatusSucceeded.String(); got != "succeeded" {
		t.Errorf("String() = %q", got)
	}
	if got := TurtleStatus(42).String(); got != "TurtleStatus(42)" {
		t.Errorf("String() = %q", got)
	}
}
