// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosbridge

import "encoding/json"

// rosbridge v2 protocol operations.
const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
	opAdvertise   = "advertise"
	opPublish     = "publish"
	opStatus      = "status"
)

// frame is one rosbridge protocol message. Which fields are set depends
// on Op.
type frame struct {
	Op           string          `json:"op"`
	ID           string          `json:"id,omitempty"`
	Topic        string          `json:"topic,omitempty"`
	Type         string          `json:"type,omitempty"`
	Msg          json.RawMessage `json:"msg,omitempty"`
	ThrottleRate int             `json:"throttle_rate,omitempty"`
	QueueLength  int             `json:"queue_length,omitempty"`

	// Level is set on status frames, which the server sends to report
	// protocol errors. Their Msg is a JSON string.
	Level string `json:"level,omitempty"`
}

// statusText returns the text of a status frame.
func (f frame) statusText() string {
	var text string
	if err := json.Unmarshal(f.Msg, &text); err != nil {
		return string(f.Msg)
	}
	return text
}
