// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package turtlebot adapts request/response robot tasks onto a
// TurtleBot that only speaks rosbridge publish/subscribe.
//
// A published navigation goal gets no acknowledgement. The only
// evidence that move_base accepted it is a new goal identifier at the
// head of the status topic, so [Dispatcher] records the current
// [RunID], publishes the goal, and waits for the identifier to change.
// [Orchestrator] chains an inspection: face the target, dispatch, wait
// for the goal to succeed, arm the camera capture, wait for the image.
// Both phases are bounded by the inspection timeout, shared between
// them or granted per phase.
//
// [Robot] is the host-facing entry point. It serializes submissions,
// tracks whether mission status comes from the status topic or from
// the locally held inspection status, and turns timeouts into a
// Failure status the host discovers by polling. Result retrieval never
// fails: missing or unreadable images become a [mission.Result] with a
// named absence.
//
// Every wait selects on a topic's update signal, a clock timer for the
// deadline, and the caller's context. Nothing sleeps.
package turtlebot
