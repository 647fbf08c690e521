// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import "errors"

var (
	// ErrNotFound is returned by Read when the run identifier is not
	// associated with a slot or the slot's image was never written.
	ErrNotFound = errors.New("capture: image not found")

	// ErrCorrupt is returned by Read when the stored image no longer
	// matches the digest recorded when it was written.
	ErrCorrupt = errors.New("capture: stored image does not match its digest")
)
