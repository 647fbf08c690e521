// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"strings"
	"testing"
)

func TestSumDistinguishesContent(t *testing.T) {
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different payloads produced the same digest")
	}
	if Sum(nil) != Sum([]byte{}) {
		t.Error("nil and empty payloads differ")
	}
}

func TestSumIsStable(t *testing.T) {
	frame := []byte(strings.Repeat("frame ", 50000))
	if Sum(frame) != Sum(append([]byte(nil), frame...)) {
		t.Error("equal payloads produced different digests")
	}
}

func TestFormatDigest(t *testing.T) {
	digest := Sum([]byte("frame"))
	formatted := FormatDigest(digest[:])
	if len(formatted) != 2*Size || strings.ToLower(formatted) != formatted {
		t.Errorf("FormatDigest = %q", formatted)
	}
}
