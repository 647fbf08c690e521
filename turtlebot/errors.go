// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"errors"
	"fmt"
)

var (
	// ErrDispatchTimeout matches *DispatchTimeoutError.
	ErrDispatchTimeout = errors.New("navigation goal was not accepted in time")

	// ErrInspectionTimeout matches *InspectionTimeoutError.
	ErrInspectionTimeout = errors.New("inspection timed out")

	// ErrMalformedStatus describes a status message without a usable
	// head entry. It is logged and never returned to callers of Robot.
	ErrMalformedStatus = errors.New("malformed goal status message")

	// ErrUnsupportedTask is returned by Submit for a task it cannot
	// execute.
	ErrUnsupportedTask = errors.New("unsupported task")

	// ErrTaskInProgress is returned by Submit while another submission
	// is executing.
	ErrTaskInProgress = errors.New("another task is in progress")

	// ErrStatusUnavailable is returned by WaitForTopics when move_base
	// has not published a status message in time.
	ErrStatusUnavailable = errors.New("navigation status not available")

	// ErrPoseUnavailable is returned when no odometry has arrived yet.
	ErrPoseUnavailable = errors.New("robot pose not available")
)

// DispatchTimeoutError reports a goal whose acceptance was never
// observed. LastKnown is the run identifier at the head of the status
// topic when the wait ended; empty if there was none.
type DispatchTimeoutError struct {
	LastKnown RunID
}

func (e *DispatchTimeoutError) Error() string {
	if e.LastKnown == "" {
		return ErrDispatchTimeout.Error() + " (no run id observed)"
	}
	return fmt.Sprintf("%s (last run id %s)", ErrDispatchTimeout, e.LastKnown)
}

func (e *DispatchTimeoutError) Is(target error) bool { return target == ErrDispatchTimeout }

// Phase names the part of an inspection that timed out.
type Phase string

const (
	PhaseNavigation Phase = "navigation"
	PhaseCapture    Phase = "capture"
)

// InspectionTimeoutError reports an inspection phase that exceeded its
// deadline.
type InspectionTimeoutError struct {
	Phase Phase
	RunID RunID
}

func (e *InspectionTimeoutError) Error() string {
	return fmt.Sprintf("%s: %s phase of run %s", ErrInspectionTimeout, e.Phase, e.RunID)
}

func (e *InspectionTimeoutError) Is(target error) bool { return target == ErrInspectionTimeout }
