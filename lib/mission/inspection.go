// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mission

import (
	"time"

	"github.com/bureau-foundation/turtlebridge/lib/geometry"
)

// Kind distinguishes inspection types.
type Kind string

const (
	KindImage        Kind = "image"
	KindThermalImage Kind = "thermal_image"
)

// TimeIndexedPose is a robot pose with the time it was observed.
type TimeIndexedPose struct {
	Pose geometry.Pose `json:"pose"`
	Time time.Time     `json:"time"`
}

// Metadata describes an inspection.
type Metadata struct {
	StartTime       time.Time       `json:"start_time"`
	TimeIndexedPose TimeIndexedPose `json:"time_indexed_pose"`
	// FileType is the image format of the result data ("jpeg", "png").
	FileType string `json:"file_type"`
}

// Reference is the handle a host keeps to download an inspection
// result later. ID is the adapter's run identifier.
type Reference struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Metadata Metadata `json:"metadata"`
}

// Inspection is a downloaded inspection result.
type Inspection struct {
	Reference
	Data []byte `json:"-"`
}

// Absence names why a result is not available.
type Absence string

const (
	// AbsenceNone marks a present result.
	AbsenceNone Absence = ""
	// AbsenceNotFound: the run identifier is unknown or the image has
	// not been written yet.
	AbsenceNotFound Absence = "not_found"
	// AbsenceUnreadable: the stored image exists but could not be read.
	AbsenceUnreadable Absence = "unreadable"
	// AbsenceCorrupt: the stored image no longer matches its digest.
	AbsenceCorrupt Absence = "corrupt"
	// AbsenceDecodeFailed: the image could not be decoded or re-encoded.
	AbsenceDecodeFailed Absence = "decode_failed"
)

// Result is the outcome of a result download.
type Result struct {
	Inspection *Inspection
	Absence    Absence
}

// Found wraps a present inspection.
func Found(inspection Inspection) Result {
	return Result{Inspection: &inspection}
}

// Missing returns an absent result with the given reason.
func Missing(reason Absence) Result {
	return Result{Absence: reason}
}

// Ready reports whether the result carries an inspection.
func (r Result) Ready() bool {
	return r.Inspection != nil
}
