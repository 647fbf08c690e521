// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint error handler used
// before (or instead of) the structured logger: main() calls run() and
// hands any returned error to [Fatal].
package process
