// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes BLAKE3-256 digests of stored payloads.
//
// The capture index records the digest of every image it writes, and
// reads verify it, so a file replaced or truncated behind the adapter's
// back is reported as corrupt instead of returned to the host.
//
//   - [Sum] -- digest of an in-memory payload
//   - [FormatDigest] -- canonical hex form for logs
package binhash
