// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for turtlebridge's
// on-disk state.
//
// The serialization boundary is the same everywhere in the repository:
//
//   - JSON on the wire: rosbridge frames and ROS messages.
//   - CBOR on disk: the capture index that maps run identifiers to
//     stored image slots.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same index contents always produce identical bytes and a rewrite of an
// unchanged index is byte-for-byte stable.
//
// Types serialized only through this package use `cbor` struct tags.
package codec
