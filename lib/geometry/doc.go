// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package geometry provides the pose types exchanged between the
// mission host and the robot adapter, and [InspectionPose], which turns
// a target position into a pose from which the robot's camera faces the
// target.
//
// Orientations are unit quaternions. Only planar (yaw) rotation is
// produced; the TurtleBot cannot pitch or roll its camera.
package geometry
