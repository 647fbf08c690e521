// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package turtlebot

import "github.com/bureau-foundation/turtlebridge/lib/geometry"

// ROS message types of the topics the adapter uses.
const (
	GoalMessageType   = "move_base_msgs/MoveBaseActionGoal"
	StatusMessageType = "actionlib_msgs/GoalStatusArray"
	PoseMessageType   = "nav_msgs/Odometry"
)

// goalFrameID is the frame navigation goals are expressed in.
const goalFrameID = "map"

// goalStamp is the fixed header stamp of published goals. move_base
// does not inspect it.
var goalStamp = Time{Secs: 1533, Nsecs: 746000000}

// Time is std_msgs/Time.
type Time struct {
	Secs  uint32 `json:"secs"`
	Nsecs uint32 `json:"nsecs"`
}

// Header is std_msgs/Header.
type Header struct {
	Seq     uint32 `json:"seq"`
	Stamp   Time   `json:"stamp"`
	FrameID string `json:"frame_id"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// PoseMessage is geometry_msgs/Pose.
type PoseMessage struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// PoseStamped is geometry_msgs/PoseStamped.
type PoseStamped struct {
	Header Header      `json:"header"`
	Pose   PoseMessage `json:"pose"`
}

type MoveBaseGoal struct {
	TargetPose PoseStamped `json:"target_pose"`
}

// MoveBaseActionGoal is the message published on the goal topic.
type MoveBaseActionGoal struct {
	Goal MoveBaseGoal `json:"goal"`
}

// NewMoveBaseActionGoal builds the goal message for pose.
func NewMoveBaseActionGoal(pose geometry.Pose) MoveBaseActionGoal {
	return MoveBaseActionGoal{
		Goal: MoveBaseGoal{
			TargetPose: PoseStamped{
				Header: Header{Seq: 0, Stamp: goalStamp, FrameID: goalFrameID},
				Pose: PoseMessage{
					Position: Point{
						X: pose.Position.X,
						Y: pose.Position.Y,
						Z: pose.Position.Z,
					},
					Orientation: Quaternion{
						X: pose.Orientation.X,
						Y: pose.Orientation.Y,
						Z: pose.Orientation.Z,
						W: pose.Orientation.W,
					},
				},
			},
		},
	}
}

// GoalID is actionlib_msgs/GoalID. Fields are pointers so a missing
// field is distinguishable from an empty one.
type GoalID struct {
	ID *string `json:"id"`
}

// GoalStatus is actionlib_msgs/GoalStatus.
type GoalStatus struct {
	GoalID *GoalID `json:"goal_id"`
	Status *int    `json:"status"`
}

// GoalStatusArray is the message on the status topic. Entry 0 describes
// the most recent goal.
type GoalStatusArray struct {
	StatusList []GoalStatus `json:"status_list"`
}

type PoseWithCovariance struct {
	Pose PoseMessage `json:"pose"`
}

// Odometry is nav_msgs/Odometry, reduced to the fields the adapter
// reads.
type Odometry struct {
	Header Header             `json:"header"`
	Pose   PoseWithCovariance `json:"pose"`
}

// RobotPose converts the odometry pose to a pose in the robot frame.
func (o Odometry) RobotPose() geometry.Pose {
	position := o.Pose.Pose.Position
	orientation := o.Pose.Pose.Orientation
	return geometry.Pose{
		Position: geometry.Position{
			X: position.X, Y: position.Y, Z: position.Z,
			Frame: geometry.FrameRobot,
		},
		Orientation: geometry.Orientation{
			X: orientation.X, Y: orientation.Y, Z: orientation.Z, W: orientation.W,
			Frame: geometry.FrameRobot,
		},
		Frame: geometry.FrameRobot,
	}
}
