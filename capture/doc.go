// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture persists camera frames requested by inspection tasks.
//
// The robot publishes compressed camera frames continuously; only the
// frame that arrives after an inspection asks for one is interesting.
// A [Channel] is armed for exactly one frame at a time: [Channel.Arm]
// allocates a [Slot] (a sequence number and a storage path), the next
// frame delivered while armed is written to that path, and the channel
// disarms. Frames arriving while disarmed are ordinary topic updates
// and are dropped.
//
// Run identifiers are associated with slots either at arm time
// ([Channel.Bind]) or afterwards while the channel is still armed
// ([Channel.RegisterRunID]). Associations, file digests, and storage
// times are kept in an [Index] persisted as CBOR next to the images,
// so results remain readable after the adapter restarts.
// [Channel.Read] verifies the BLAKE3 digest of a stored image before
// returning it.
//
// [ExtractChannel] derives a single-channel image from a stored frame,
// the representation thermal cameras publish as false-colour RGB.
package capture
