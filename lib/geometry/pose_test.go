// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package geometry

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestYawOrientationRoundTrip(t *testing.T) {
	for _, yaw := range []float64{0, math.Pi / 4, math.Pi / 2, -math.Pi / 3, 3} {
		got := YawOrientation(yaw, FrameRobot).Yaw()
		if math.Abs(got-yaw) > tolerance {
			t.Errorf("Yaw(YawOrientation(%v)) = %v", yaw, got)
		}
	}
}

func TestInspectionPoseFacesTarget(t *testing.T) {
	current := Pose{
		Position:    Position{X: 1, Y: 1, Z: 0, Frame: FrameRobot},
		Orientation: YawOrientation(0, FrameRobot),
		Frame:       FrameRobot,
	}

	tests := []struct {
		name    string
		target  Position
		wantYaw float64
	}{
		{"east", Position{X: 5, Y: 1, Z: 2}, 0},
		{"north", Position{X: 1, Y: 4, Z: 0.5}, math.Pi / 2},
		{"south-west", Position{X: 0, Y: 0}, -3 * math.Pi / 4},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pose := InspectionPose(current, test.target)
			if pose.Position != current.Position {
				t.Errorf("position moved: %+v", pose.Position)
			}
			if yaw := pose.Orientation.Yaw(); math.Abs(yaw-test.wantYaw) > tolerance {
				t.Errorf("yaw = %v, want %v", yaw, test.wantYaw)
			}
		})
	}
}

func TestInspectionPoseTargetOverheadKeepsOrientation(t *testing.T) {
	current := Pose{
		Position:    Position{X: 2, Y: 3},
		Orientation: YawOrientation(1.2, FrameRobot),
		Frame:       FrameRobot,
	}
	pose := InspectionPose(current, Position{X: 2, Y: 3, Z: 4})
	if pose.Orientation != current.Orientation {
		t.Errorf("orientation = %+v, want %+v", pose.Orientation, current.Orientation)
	}
}
