// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Size is the length of a digest in bytes.
const Size = 32

// Sum returns the digest of data.
func Sum(data []byte) [Size]byte {
	return blake3.Sum256(data)
}

// FormatDigest returns the hex encoding of digest.
func FormatDigest(digest []byte) string {
	return hex.EncodeToString(digest)
}
