// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosbridge

import "encoding/json"

// Handler receives the raw JSON "msg" of each message published on a
// subscribed topic. Handlers run on the transport's delivery goroutine
// and must not block.
type Handler func(message json.RawMessage)

// SubscribeOptions are passed through to the rosbridge server.
type SubscribeOptions struct {
	// ThrottleRate is the minimum time between messages the server
	// forwards, in milliseconds. Zero forwards every message.
	ThrottleRate int

	// QueueLength is the number of messages the server buffers while
	// throttling. Zero keeps only the latest.
	QueueLength int
}

// Bus is a publish/subscribe connection to the robot.
type Bus interface {
	// Subscribe registers handler for messages on topic. Multiple
	// handlers may be registered for one topic.
	Subscribe(topic, messageType string, options SubscribeOptions, handler Handler) error

	// Publish sends message, encoded as JSON, on topic. It returns once
	// the message is handed to the transport; it says nothing about
	// whether any subscriber received it.
	Publish(topic, messageType string, message any) error
}
