// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mission

// Status is the mission status reported to the host.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	// StatusUnexpected is reported when the robot's state cannot be
	// interpreted (no status published yet, unknown status code).
	StatusUnexpected Status = "unexpected"
)

// Terminal reports whether s is a final status the host stops polling at.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
