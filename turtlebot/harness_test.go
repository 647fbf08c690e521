// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/turtlebridge/capture"
	"github.com/bureau-foundation/turtlebridge/lib/clock"
	"github.com/bureau-foundation/turtlebridge/lib/mission"
	"github.com/bureau-foundation/turtlebridge/rosbridge"
)

const (
	imageTopic        = "/camera/rgb/image_raw/compressed"
	testTimeout       = 5 * time.Second
	dispatchTimeout   = 20 * time.Second
	inspectionTimeout = 10 * time.Second
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	bus     *rosbridge.MemoryBus
	clock   *clock.FakeClock
	capture *capture.Channel
	robot   *Robot
	folder  string
}

type harnessOptions struct {
	sharedDeadline bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, harnessOptions{sharedDeadline: true})
}

func newHarnessWith(t *testing.T, options harnessOptions) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := rosbridge.NewMemoryBus()
	fakeClock := clock.Fake(epoch)

	folder := filepath.Join(t.TempDir(), "images")
	channel, err := capture.Open(capture.ChannelConfig{
		Bus:           bus,
		Topic:         imageTopic,
		ThrottleRate:  1000,
		StorageFolder: folder,
		Clock:         fakeClock,
		Logger:        logger,
	})
	if err != nil {
		t.Fatalf("capture.Open: %v", err)
	}

	robot, err := New(Config{
		Bus:                  bus,
		Capture:              channel,
		DispatchTimeout:      dispatchTimeout,
		InspectionTimeout:    inspectionTimeout,
		SharedDeadline:       options.sharedDeadline,
		ImageFileType:        "jpeg",
		ThermalImageFileType: "png",
		Clock:                fakeClock,
		Logger:               logger,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{bus: bus, clock: fakeClock, capture: channel, robot: robot, folder: folder}
}

func statusMessage(rawID string, code TurtleStatus) GoalStatusArray {
	id := rawID
	status := int(code)
	return GoalStatusArray{StatusList: []GoalStatus{{GoalID: &GoalID{ID: &id}, Status: &status}}}
}

// status publishes a one-entry status array as move_base would.
func (h *harness) status(t *testing.T, rawID string, code TurtleStatus) {
	t.Helper()
	if err := h.bus.Deliver(DefaultStatusTopic, statusMessage(rawID, code)); err != nil {
		t.Fatalf("delivering status: %v", err)
	}
}

func (h *harness) odometry(t *testing.T, x, y, yaw float64) {
	t.Helper()
	message := Odometry{Pose: PoseWithCovariance{Pose: PoseMessage{
		Position:    Point{X: x, Y: y},
		Orientation: Quaternion{Z: sinHalf(yaw), W: cosHalf(yaw)},
	}}}
	if err := h.bus.Deliver(DefaultPoseTopic, message); err != nil {
		t.Fatalf("delivering odometry: %v", err)
	}
}

// acceptGoals makes move_base accept each published goal by reporting
// the next of rawIDs as Active.
func (h *harness) acceptGoals(t *testing.T, rawIDs ...string) {
	t.Helper()
	var mu sync.Mutex
	next := 0
	h.bus.OnPublish(DefaultGoalTopic, func(json.RawMessage) {
		mu.Lock()
		if next >= len(rawIDs) {
			mu.Unlock()
			return
		}
		rawID := rawIDs[next]
		next++
		mu.Unlock()
		if err := h.bus.Deliver(DefaultStatusTopic, statusMessage(rawID, StatusActive)); err != nil {
			t.Errorf("delivering acceptance: %v", err)
		}
	})
}

func (h *harness) image(t *testing.T, data []byte) {
	t.Helper()
	message := capture.CompressedImage{Format: "jpeg", Data: base64.StdEncoding.EncodeToString(data)}
	if err := h.bus.Deliver(imageTopic, message); err != nil {
		t.Fatalf("delivering image: %v", err)
	}
}

func (h *harness) publishedGoals(t *testing.T) []MoveBaseActionGoal {
	t.Helper()
	var goals []MoveBaseActionGoal
	for _, raw := range h.bus.Published(DefaultGoalTopic) {
		var goal MoveBaseActionGoal
		if err := json.Unmarshal(raw, &goal); err != nil {
			t.Fatalf("decoding published goal: %v", err)
		}
		goals = append(goals, goal)
	}
	return goals
}

// requireArmed waits for the orchestration goroutine to arm the
// capture channel.
func (h *harness) requireArmed(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(testTimeout) //nolint:realclock test hang prevention
	for !h.capture.Armed() {
		if time.Now().After(deadline) { //nolint:realclock test hang prevention
			t.Fatal("capture channel was never armed")
		}
		time.Sleep(time.Millisecond) //nolint:realclock polling a state with no notification
	}
}

type outcome struct {
	runID RunID
	err   error
}

func (h *harness) submitAsync(ctx context.Context, task mission.Task) <-chan outcome {
	results := make(chan outcome, 1)
	go func() {
		runID, err := h.robot.Submit(ctx, task)
		results <- outcome{runID, err}
	}()
	return results
}

func (h *harness) inspectAsync(ctx context.Context, task mission.TakeImage) <-chan outcome {
	results := make(chan outcome, 1)
	go func() {
		runID, err := h.robot.orchestrator.Run(ctx, task.Target)
		results <- outcome{runID, err}
	}()
	return results
}
