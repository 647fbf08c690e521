// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireClosed], and [RequireNoReceive] encapsulate
// the timeout safety valve pattern (select with a wall-clock fallback).
// Deadlines under test run on lib/clock's fake clock; real time only
// turns a hung test into a failure.
//
// All helpers call t.Fatalf on failure.
package testutil
