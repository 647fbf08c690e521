// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package geometry

import "math"

// Frame names the coordinate frame a value is expressed in.
type Frame string

const (
	// FrameRobot is the robot's map frame, as used by move_base.
	FrameRobot Frame = "robot"

	// FrameAsset is the frame of the facility model targets come from.
	FrameAsset Frame = "asset"
)

// Position is a point in 3D space.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Frame Frame   `json:"frame"`
}

// Orientation is a unit quaternion.
type Orientation struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	W     float64 `json:"w"`
	Frame Frame   `json:"frame"`
}

// Pose is a position plus an orientation.
type Pose struct {
	Position    Position    `json:"position"`
	Orientation Orientation `json:"orientation"`
	Frame       Frame       `json:"frame"`
}

// YawOrientation returns the quaternion for a rotation of yaw radians
// about the z axis.
func YawOrientation(yaw float64, frame Frame) Orientation {
	return Orientation{
		Z:     math.Sin(yaw / 2),
		W:     math.Cos(yaw / 2),
		Frame: frame,
	}
}

// Yaw returns the rotation about the z axis encoded by o, in radians.
func (o Orientation) Yaw() float64 {
	return math.Atan2(2*(o.W*o.Z+o.X*o.Y), 1-2*(o.Y*o.Y+o.Z*o.Z))
}

// InspectionPose returns the pose from which the robot inspects target:
// the robot stays at its current position and turns to face the target
// in the horizontal plane. A target directly above or below the robot
// keeps the current orientation.
func InspectionPose(current Pose, target Position) Pose {
	dx := target.X - current.Position.X
	dy := target.Y - current.Position.Y

	orientation := current.Orientation
	if math.Hypot(dx, dy) > 1e-9 {
		orientation = YawOrientation(math.Atan2(dy, dx), current.Frame)
	}

	return Pose{
		Position:    current.Position,
		Orientation: orientation,
		Frame:       current.Frame,
	}
}
