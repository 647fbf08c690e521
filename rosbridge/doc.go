// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rosbridge connects the adapter to a robot's ROS graph through
// a rosbridge v2 websocket server.
//
// The package defines one interface, [Bus]: subscribe a handler to a
// topic, and publish a message on a topic. Publication is
// fire-and-forget. rosbridge offers no acknowledgement that a message
// reached its subscribers, and delivery to our handlers happens on the
// transport's own goroutine whenever the robot publishes.
//
// [Client] implements Bus over golang.org/x/net/websocket, speaking the
// rosbridge JSON protocol (subscribe, advertise, publish ops as text
// frames). A single read loop goroutine decodes frames and invokes
// handlers in arrival order. Topics are advertised lazily on their first
// publication.
//
// [MemoryBus] is an in-process Bus for tests. Deliver invokes handlers
// synchronously on the caller's goroutine, and OnPublish hooks let a
// test play the robot's side: react to a published goal by delivering a
// status update, for example.
//
// [Topic] is a latest-value cache over one topic. It subscribes once,
// keeps only the most recent decoded message (bursts collapse), and
// exposes an Updated channel that is closed on the next message, so
// waiters block on a channel instead of sleeping and re-polling.
package rosbridge
