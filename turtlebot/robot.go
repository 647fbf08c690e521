// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/turtlebridge/capture"
	"github.com/bureau-foundation/turtlebridge/lib/clock"
	"github.com/bureau-foundation/turtlebridge/lib/geometry"
	"github.com/bureau-foundation/turtlebridge/lib/mission"
	"github.com/bureau-foundation/turtlebridge/rosbridge"
)

// Default topic names and timeouts.
const (
	DefaultGoalTopic         = "/move_base/goal"
	DefaultStatusTopic       = "/move_base/status"
	DefaultPoseTopic         = "/odom"
	DefaultDispatchTimeout   = 20 * time.Second
	DefaultInspectionTimeout = 60 * time.Second
)

// Config configures New.
type Config struct {
	// Bus connects to the robot. Required.
	Bus rosbridge.Bus

	// Capture stores inspection images. Required. It should be
	// subscribed on the same Bus.
	Capture *capture.Channel

	GoalTopic   string
	StatusTopic string
	PoseTopic   string

	// DispatchTimeout bounds the wait for goal acceptance.
	DispatchTimeout time.Duration

	// InspectionTimeout bounds the navigation and capture phases of an
	// inspection.
	InspectionTimeout time.Duration

	// SharedDeadline makes both inspection phases share one
	// InspectionTimeout.
	SharedDeadline bool

	// ImageFileType and ThermalImageFileType are reported in inspection
	// metadata. The thermal type is also the format thermal results are
	// re-encoded to.
	ImageFileType        string
	ThermalImageFileType string

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger is required.
	Logger *slog.Logger
}

// statusSource says where MissionStatus reads from.
type statusSource int

const (
	// sourceTopic reads the head of the status topic.
	sourceTopic statusSource = iota
	// sourceLocal reads the locally held status: the transport has no
	// notion of a captured image or of a goal that was never accepted.
	sourceLocal
)

// Robot is the host-facing TurtleBot adapter. It executes one task at a
// time.
type Robot struct {
	correlator   *Correlator
	dispatcher   *Dispatcher
	orchestrator *Orchestrator
	capture      *capture.Channel
	pose         *rosbridge.Topic[Odometry]
	clock        clock.Clock
	logger       *slog.Logger

	imageFileType        string
	thermalImageFileType string

	mu          sync.Mutex
	busy        bool
	source      statusSource
	localStatus TurtleStatus
}

// New subscribes to the status and pose topics and returns a Robot.
func New(config Config) (*Robot, error) {
	if config.Bus == nil {
		return nil, fmt.Errorf("turtlebot: Config.Bus is required")
	}
	if config.Capture == nil {
		return nil, fmt.Errorf("turtlebot: Config.Capture is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("turtlebot: Config.Logger is required")
	}
	if config.GoalTopic == "" {
		config.GoalTopic = DefaultGoalTopic
	}
	if config.StatusTopic == "" {
		config.StatusTopic = DefaultStatusTopic
	}
	if config.PoseTopic == "" {
		config.PoseTopic = DefaultPoseTopic
	}
	if config.DispatchTimeout <= 0 {
		config.DispatchTimeout = DefaultDispatchTimeout
	}
	if config.InspectionTimeout <= 0 {
		config.InspectionTimeout = DefaultInspectionTimeout
	}
	if config.ImageFileType == "" {
		config.ImageFileType = "jpeg"
	}
	if config.ThermalImageFileType == "" {
		config.ThermalImageFileType = "png"
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}

	goal, err := rosbridge.NewTopic[MoveBaseActionGoal](config.Bus, config.GoalTopic, GoalMessageType, rosbridge.SubscribeOptions{}, config.Logger)
	if err != nil {
		return nil, fmt.Errorf("turtlebot: %w", err)
	}
	status, err := rosbridge.NewTopic[GoalStatusArray](config.Bus, config.StatusTopic, StatusMessageType, rosbridge.SubscribeOptions{}, config.Logger)
	if err != nil {
		return nil, fmt.Errorf("turtlebot: %w", err)
	}
	pose, err := rosbridge.NewTopic[Odometry](config.Bus, config.PoseTopic, PoseMessageType, rosbridge.SubscribeOptions{}, config.Logger)
	if err != nil {
		return nil, fmt.Errorf("turtlebot: %w", err)
	}

	robot := &Robot{
		capture:              config.Capture,
		pose:                 pose,
		clock:                config.Clock,
		logger:               config.Logger,
		imageFileType:        config.ImageFileType,
		thermalImageFileType: config.ThermalImageFileType,
		localStatus:          StatusUnknown,
	}
	robot.correlator = NewCorrelator(status, config.Logger)
	robot.dispatcher = &Dispatcher{
		goal:       goal,
		correlator: robot.correlator,
		clock:      config.Clock,
		timeout:    config.DispatchTimeout,
		logger:     config.Logger,
	}
	robot.orchestrator = &Orchestrator{
		dispatcher: robot.dispatcher,
		correlator: robot.correlator,
		capture:    config.Capture,
		pose:       robot.Pose,
		clock:      config.Clock,
		timeout:    config.InspectionTimeout,
		shared:     config.SharedDeadline,
		onStatus:   robot.setLocalStatus,
		logger:     config.Logger,
	}
	return robot, nil
}

// Submit executes task and returns the run identifier of its
// navigation goal. Navigation tasks return once move_base accepts the
// goal; inspections return after the image is stored or a phase times
// out.
//
// Timeouts do not fail the call: they are logged and the mission
// status becomes failed, which the host discovers by polling. The run
// identifier is empty when the goal was never accepted. Submit fails
// with ErrUnsupportedTask for an unknown task, ErrTaskInProgress while
// another Submit is executing, and ctx.Err() when ctx ends a wait.
func (r *Robot) Submit(ctx context.Context, task mission.Task) (RunID, error) {
	switch task.(type) {
	case mission.DriveToPose, mission.TakeImage, mission.TakeThermalImage:
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedTask, task)
	}

	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return "", ErrTaskInProgress
	}
	r.busy = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()

	logger := r.logger.With("task", task.String())
	logger.Info("task submitted")

	var (
		runID RunID
		err   error
	)
	switch t := task.(type) {
	case mission.DriveToPose:
		r.setSource(sourceTopic)
		runID, err = r.dispatcher.Dispatch(ctx, t.Pose)
		if err != nil {
			r.setLocalStatus(StatusFailure)
		}
	case mission.TakeImage:
		runID, err = r.orchestrator.Run(ctx, t.Target)
	case mission.TakeThermalImage:
		runID, err = r.orchestrator.Run(ctx, t.Target)
	}

	switch {
	case err == nil:
		logger.Info("task finished", "run_id", runID)
		return runID, nil
	case errors.Is(err, ErrDispatchTimeout), errors.Is(err, ErrInspectionTimeout):
		logger.Error("task timed out", "run_id", runID, "error", err)
		return runID, nil
	case ctx.Err() != nil:
		logger.Warn("task cancelled", "run_id", runID, "error", err)
		return runID, ctx.Err()
	default:
		logger.Error("task failed", "run_id", runID, "error", err)
		return runID, nil
	}
}

// MissionStatus returns the status of the most recent task.
func (r *Robot) MissionStatus() mission.Status {
	r.mu.Lock()
	source, local := r.source, r.localStatus
	r.mu.Unlock()

	if source == sourceLocal {
		return local.MissionStatus()
	}
	return r.correlator.NavigationStatus().MissionStatus()
}

// Abort reports success without instructing the robot: an in-flight
// goal keeps running and an active wait is not shortened.
func (r *Robot) Abort() bool {
	r.logger.Warn("abort requested; the robot is not stopped")
	return true
}

// MissionScheduled reports whether the robot runs a mission of its own.
// The TurtleBot only executes individual tasks.
func (r *Robot) MissionScheduled() bool { return false }

// InspectionReferences returns the references under which the host
// fetches the results of task, submitted as runID. Navigation tasks
// have none. The run identifier is registered with the capture channel,
// and the references carry the current robot pose and time.
func (r *Robot) InspectionReferences(runID RunID, task mission.Task) ([]mission.Reference, error) {
	var (
		kind     mission.Kind
		fileType string
	)
	switch task.(type) {
	case mission.DriveToPose:
		return nil, nil
	case mission.TakeImage:
		kind, fileType = mission.KindImage, r.imageFileType
	case mission.TakeThermalImage:
		kind, fileType = mission.KindThermalImage, r.thermalImageFileType
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedTask, task)
	}

	r.capture.RegisterRunID(string(runID))

	pose, err := r.Pose()
	if err != nil {
		return nil, err
	}
	now := r.clock.Now().UTC()
	return []mission.Reference{{
		ID:   string(runID),
		Kind: kind,
		Metadata: mission.Metadata{
			StartTime:       now,
			TimeIndexedPose: mission.TimeIndexedPose{Pose: pose, Time: now},
			FileType:        fileType,
		},
	}}, nil
}

// FetchResult reads the image stored for reference. Thermal results are
// reduced to their first channel and re-encoded in the reference's
// file type. Failures are reported as absences so the host retries.
func (r *Robot) FetchResult(reference mission.Reference) mission.Result {
	logger := r.logger.With("run_id", reference.ID, "kind", reference.Kind)

	data, err := r.capture.Read(reference.ID)
	if err != nil {
		logger.Info("inspection result not available", "error", err)
		switch {
		case errors.Is(err, capture.ErrNotFound):
			return mission.Missing(mission.AbsenceNotFound)
		case errors.Is(err, capture.ErrCorrupt):
			return mission.Missing(mission.AbsenceCorrupt)
		default:
			return mission.Missing(mission.AbsenceUnreadable)
		}
	}

	if reference.Kind == mission.KindThermalImage {
		data, err = capture.ExtractChannel(data, 0, reference.Metadata.FileType)
		if err != nil {
			logger.Warn("converting thermal image", "error", err)
			return mission.Missing(mission.AbsenceDecodeFailed)
		}
	}
	return mission.Found(mission.Inspection{Reference: reference, Data: data})
}

// Pose returns the robot pose from the latest odometry message.
func (r *Robot) Pose() (geometry.Pose, error) {
	odometry, ok := r.pose.Value()
	if !ok {
		return geometry.Pose{}, fmt.Errorf("%w: nothing received on %s", ErrPoseUnavailable, r.pose.Name())
	}
	return odometry.RobotPose(), nil
}

// WaitForTopics blocks until the status topic has delivered a message
// and, when withPose is set, the pose topic too. A goal dispatched
// before the first status message has no previous run id to compare
// against, and an inspection cannot start without a pose. Both waits
// share one timeout.
func (r *Robot) WaitForTopics(ctx context.Context, timeout time.Duration, withPose bool) error {
	deadline := r.clock.Now().Add(timeout)

	ok, err := waitUntil(ctx, r.clock, deadline, r.correlator.Updated, r.correlator.Received)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: nothing received on %s within %s", ErrStatusUnavailable, r.correlator.status.Name(), timeout)
	}
	if !withPose {
		return nil
	}

	hasPose := func() bool {
		_, ok := r.pose.Value()
		return ok
	}
	ok, err = waitUntil(ctx, r.clock, deadline, r.pose.Updated, hasPose)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: nothing received on %s within %s", ErrPoseUnavailable, r.pose.Name(), timeout)
	}
	return nil
}

// LogStatus writes one structured line describing a mission's state.
func (r *Robot) LogStatus(runID RunID, status mission.Status, task mission.Task) {
	var description string
	if task != nil {
		description = task.String()
	}
	r.logger.Info("mission status", "run_id", runID, "status", status, "task", description)
}

func (r *Robot) setSource(source statusSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = source
}

// setLocalStatus switches MissionStatus to the local status.
func (r *Robot) setLocalStatus(status TurtleStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = sourceLocal
	r.localStatus = status
}
