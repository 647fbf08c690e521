// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/bureau-foundation/turtlebridge/lib/geometry"
)

func sinHalf(yaw float64) float64 { return math.Sin(yaw / 2) }
func cosHalf(yaw float64) float64 { return math.Cos(yaw / 2) }

func TestMoveBaseActionGoalWireFormat(t *testing.T) {
	pose := geometry.Pose{
		Position:    geometry.Position{X: 1.5, Y: -2, Z: 0},
		Orientation: geometry.Orientation{Z: 0.5, W: 0.75},
	}
	encoded, err := json.Marshal(NewMoveBaseActionGoal(pose))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		Goal struct {
			TargetPose struct {
				Header struct {
					Seq   int `json:"seq"`
					Stamp struct {
						Secs  int `json:"secs"`
						Nsecs int `json:"nsecs"`
					} `json:"stamp"`
					FrameID string `json:"frame_id"`
				} `json:"header"`
				Pose struct {
					Position    map[string]float64 `json:"position"`
					Orientation map[string]float64 `json:"orientation"`
				} `json:"pose"`
			} `json:"target_pose"`
		} `json:"goal"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	header := decoded.Goal.TargetPose.Header
	if header.Seq != 0 || header.Stamp.Secs != 1533 || header.Stamp.Nsecs != 746000000 || header.FrameID != "map" {
		t.Errorf("header = %+v", header)
	}
	position := decoded.Goal.TargetPose.Pose.Position
	if len(position) != 3 || position["x"] != 1.5 || position["y"] != -2 || position["z"] != 0 {
		t.Errorf("position = %v", position)
	}
	orientation := decoded.Goal.TargetPose.Pose.Orientation
	if len(orientation) != 4 || orientation["z"] != 0.5 || orientation["w"] != 0.75 {
		t.Errorf("orientation = %v", orientation)
	}
}

func TestOdometryRobotPose(t *testing.T) {
	var odometry Odometry
	raw := `{"header": {"frame_id": "odom"}, "pose": {"pose": {"position": {"x": 1, "y": 2, "z": 0.1},
		"orientation": {"x": 0, "y": 0, "z": 0.7071, "w": 0.7071}}, "covariance": [0, 0]}, "twist": {}}`
	if err := json.Unmarshal([]byte(raw), &odometry); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	pose := odometry.RobotPose()
	if pose.Frame != geometry.FrameRobot || pose.Position.Frame != geometry.FrameRobot {
		t.Errorf("frames = %q, %q", pose.Frame, pose.Position.Frame)
	}
	if pose.Position.X != 1 || pose.Position.Y != 2 || pose.Position.Z != 0.1 {
		t.Errorf("position = %+v", pose.Position)
	}
	if pose.Orientation.Z != 0.7071 || pose.Orientation.W != 0.7071 {
		t.Errorf("orientation = %+v", pose.Orientation)
	}
}
