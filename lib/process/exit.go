// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
)

// ExitCoder is implemented by errors that carry a specific process
// exit status.
type ExitCoder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits. The exit status is
// taken from the first error in err's chain that implements
// ExitCoder, otherwise 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if code, ok := ExitCode(err); ok {
		os.Exit(code)
	}
	os.Exit(1)
}

// ExitCode returns the exit status carried by err, if any error in its
// chain implements ExitCoder.
func ExitCode(err error) (int, bool) {
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	return 0, false
}
