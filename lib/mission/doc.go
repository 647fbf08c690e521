// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mission defines the host-facing contract of a robot adapter:
// the tasks a mission host submits, the status it polls, the inspection
// references it is handed, and the results it downloads.
//
// [Task] is a closed sum type. Its marker method is unexported, so the
// only variants are [DriveToPose], [TakeImage], and [TakeThermalImage];
// adapters switch over exactly those three.
//
// [Result] makes result retrieval explicit: a result either carries an
// [Inspection] or names why it is absent. Absence is not an error. The
// host is expected to poll again later.
package mission
