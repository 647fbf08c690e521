// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bureau-foundation/turtlebridge/lib/geometry"
	"github.com/bureau-foundation/turtlebridge/lib/mission"
	"github.com/bureau-foundation/turtlebridge/lib/testutil"
)

// Robot at (1, 2) facing -x; the target lies straight ahead in +y.
var inspectTarget = mission.TakeImage{Target: geometry.Position{X: 1, Y: 5, Z: 1, Frame: geometry.FrameAsset}}

func (h *harness) prepareInspection(t *testing.T) {
	t.Helper()
	h.odometry(t, 1, 2, math.Pi)
	h.status(t, "move_base-aaaa.1", StatusSucceeded)
	h.acceptGoals(t, "move_base-bbbb.2")
}

func TestInspectionSucceeds(t *testing.T) {
	h := newHarness(t)
	h.prepareInspection(t)

	results := h.inspectAsync(context.Background(), inspectTarget)
	h.clock.WaitForTimers(1)
	if got := h.robot.MissionStatus(); got != mission.StatusInProgress {
		t.Errorf("MissionStatus during navigation = %q", got)
	}

	h.status(t, "move_base-bbbb.3", StatusSucceeded)
	h.requireArmed(t)
	h.image(t, []byte("jpeg bytes"))

	result := testutil.RequireReceive(t, results, testTimeout, "waiting for inspection")
	if result.err != nil || result.runID != "bbbb" {
		t.Fatalf("Run = %q, %v", result.runID, result.err)
	}
	if got := h.robot.MissionStatus(); got != mission.StatusCompleted {
		t.Errorf("MissionStatus = %q, want completed", got)
	}

	data, err := h.capture.Read("bbbb")
	if err != nil || string(data) != "jpeg bytes" {
		t.Errorf("Read = %q, %v", data, err)
	}

	goals := h.publishedGoals(t)
	if len(goals) != 1 {
		t.Fatalf("published %d goals", len(goals))
	}
	pose := goals[0].Goal.TargetPose.Pose
	if pose.Position.X != 1 || pose.Position.Y != 2 {
		t.Errorf("inspection pose moved the robot: %+v", pose.Position)
	}
	yaw := geometry.Orientation{Z: pose.Orientation.Z, W: pose.Orientation.W}.Yaw()
	if math.Abs(yaw-math.Pi/2) > 1e-9 {
		t.Errorf("inspection yaw = %v, want pi/2", yaw)
	}
}

func TestInspectionNavigationTimeout(t *testing.T) {
	h := newHarness(t)
	h.prepareInspection(t)

	results := h.inspectAsync(context.Background(), inspectTarget)
	h.clock.WaitForTimers(1)
	h.clock.Advance(inspectionTimeout - time.Millisecond)
	testutil.RequireNoReceive(t, results, "inspection ended before its deadline")
	h.clock.Advance(time.Millisecond)

	result := testutil.RequireReceive(t, results, testTimeout, "waiting for navigation timeout")
	var timeout *InspectionTimeoutError
	if !errors.As(result.err, &timeout) {
		t.Fatalf("err = %v, want InspectionTimeoutError", result.err)
	}
	if timeout.Phase != PhaseNavigation || timeout.RunID != "bbbb" {
		t.Errorf("timeout = %+v", timeout)
	}
	if result.runID != "bbbb" {
		t.Errorf("runID = %q", result.runID)
	}
	if h.capture.Armed() {
		t.Error("capture armed after navigation timeout")
	}
	if got := h.robot.MissionStatus(); got != mission.StatusFailed {
		t.Errorf("MissionStatus = %q, want failed", got)
	}
}

func TestInspectionDeadlineIsCumulative(t *testing.T) {
	h := newHarness(t)
	h.prepareInspection(t)

	results := h.inspectAsync(context.Background(), inspectTarget)
	h.clock.WaitForTimers(1)
	h.clock.Advance(7 * time.Second)
	h.status(t, "move_base-bbbb.3", StatusSucceeded)

	// Capture gets only the 3s left of the navigation deadline.
	h.requireArmed(t)
	h.clock.WaitForTimers(1)
	h.clock.Advance(3 * time.Second)

	result := testutil.RequireReceive(t, results, testTimeout, "waiting for capture timeout")
	var timeout *InspectionTimeoutError
	if !errors.As(result.err, &timeout) || timeout.Phase != PhaseCapture {
		t.Fatalf("err = %v, want capture-phase timeout", result.err)
	}
	if !errors.Is(result.err, ErrInspectionTimeout) {
		t.Error("errors.Is(err, ErrInspectionTimeout) = false")
	}
	if h.capture.Armed() {
		t.Error("capture still armed after timeout")
	}

	// A frame arriving after the timeout is not stored for the run.
	h.image(t, []byte("late frame"))
	if _, err := h.capture.Read("bbbb"); err == nil {
		t.Error("late frame stored for timed-out run")
	}
}

func TestInspectionPhasedDeadline(t *testing.T) {
	h := newHarnessWith(t, harnessOptions{sharedDeadline: false})
	h.prepareInspection(t)

	results := h.inspectAsync(context.Background(), inspectTarget)
	h.clock.WaitForTimers(1)
	h.clock.Advance(7 * time.Second)
	h.status(t, "move_base-bbbb.3", StatusSucceeded)

	h.requireArmed(t)
	h.clock.WaitForTimers(1)
	// Past the navigation deadline but within a fresh capture budget.
	h.clock.Advance(9 * time.Second)
	testutil.RequireNoReceive(t, results, "capture timed out on the navigation deadline")
	h.image(t, []byte("frame"))

	result := testutil.RequireReceive(t, results, testTimeout, "waiting for inspection")
	if result.err != nil || result.runID != "bbbb" {
		t.Fatalf("Run = %q, %v", result.runID, result.err)
	}
}

func TestInspectionPhasedCaptureTimeout(t *testing.T) {
	h := newHarnessWith(t, harnessOptions{sharedDeadline: false})
	h.prepareInspection(t)

	results := h.inspectAsync(context.Background(), inspectTarget)
	h.clock.WaitForTimers(1)
	h.status(t, "move_base-bbbb.3", StatusSucceeded)
	h.requireArmed(t)
	h.clock.WaitForTimers(1)
	h.clock.Advance(inspectionTimeout)

	result := testutil.RequireReceive(t, results, testTimeout, "waiting for capture timeout")
	var timeout *InspectionTimeoutError
	if !errors.As(result.err, &timeout) || timeout.Phase != PhaseCapture {
		t.Fatalf("err = %v, want capture-phase timeout", result.err)
	}
}

func TestInspectionWithoutPose(t *testing.T) {
	h := newHarness(t)
	h.status(t, "move_base-aaaa.1", StatusSucceeded)

	_, err := h.robot.orchestrator.Run(context.Background(), inspectTarget.Target)
	if !errors.Is(err, ErrPoseUnavailable) {
		t.Fatalf("err = %v, want ErrPoseUnavailable", err)
	}
	if len(h.bus.Published(DefaultGoalTopic)) != 0 {
		t.Error("goal published without a pose")
	}
	if got := h.robot.MissionStatus(); got != mission.StatusFailed {
		t.Errorf("MissionStatus = %q, want failed", got)
	}
}

func TestInspectionIgnoresFramesBeforeArrival(t *testing.T) {
	h := newHarness(t)
	h.prepareInspection(t)

	results := h.inspectAsync(context.Background(), inspectTarget)
	h.clock.WaitForTimers(1)
	h.image(t, []byte("frame while driving"))
	h.status(t, "move_base-bbbb.3", StatusSucceeded)
	h.requireArmed(t)
	h.image(t, []byte("frame at pose"))

	result := testutil.RequireReceive(t, results, testTimeout, "waiting for inspection")
	if result.err != nil {
		t.Fatalf("Run: %v", result.err)
	}
	data, err := h.capture.Read("bbbb")
	if err != nil || string(data) != "frame at pose" {
		t.Errorf("Read = %q, %v", data, err)
	}
}
