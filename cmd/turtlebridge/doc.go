// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Turtlebridge drives a TurtleBot through rosbridge from the command
// line. It plays the role of a mission host: it submits one task,
// polls the mission status until the task finishes, and for
// inspections downloads the captured image.
//
// Subcommands:
//
//	turtlebridge drive X Y [YAW]
//	turtlebridge inspect [--thermal] [--output FILE] X Y Z
//	turtlebridge status
//
// Configuration is read from --config or TURTLEBRIDGE_CONFIG.
package main
