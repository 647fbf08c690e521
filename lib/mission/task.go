// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mission

import (
	"fmt"

	"github.com/bureau-foundation/turtlebridge/lib/geometry"
)

// Task is a unit of robot work submitted by the mission host.
type Task interface {
	fmt.Stringer
	isTask()
}

// DriveToPose drives the robot to Pose.
type DriveToPose struct {
	Pose geometry.Pose
}

// TakeImage drives to a pose facing Target and captures a camera image.
type TakeImage struct {
	Target geometry.Position
}

// TakeThermalImage is TakeImage whose result is reduced to a single
// intensity channel.
type TakeThermalImage struct {
	Target geometry.Position
}

func (DriveToPose) isTask()      {}
func (TakeImage) isTask()        {}
func (TakeThermalImage) isTask() {}

func (t DriveToPose) String() string {
	return fmt.Sprintf("drive_to_pose(%.3f, %.3f, %.3f)", t.Pose.Position.X, t.Pose.Position.Y, t.Pose.Position.Z)
}

func (t TakeImage) String() string {
	return fmt.Sprintf("take_image(%.3f, %.3f, %.3f)", t.Target.X, t.Target.Y, t.Target.Z)
}

func (t TakeThermalImage) String() string {
	return fmt.Sprintf("take_thermal_image(%.3f, %.3f, %.3f)", t.Target.X, t.Target.Y, t.Target.Z)
}
