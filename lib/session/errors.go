// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"

	"github.com/mcpdispatch/mcpdispatch/lib/supervise"
)

// StreamError reports an I/O failure while relaying the message stream.
// It is fatal to the session and never retried — the originating
// connection is presumed gone.
type StreamError struct {
	// Direction names the failing copy loop, "caller to backend" or
	// "backend to caller".
	Direction string

	// Err is the underlying I/O error.
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream failure (%s): %v", e.Direction, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// ChildExitError reports a backend that terminated on its own with a
// nonzero exit code or a signal. Not retried.
type ChildExitError struct {
	// Server is the name of the backend that failed.
	Server string

	// Status is the terminal status reported by the supervisor.
	Status supervise.ExitStatus
}

func (e *ChildExitError) Error() string {
	if e.Status.Signaled() {
		return fmt.Sprintf("backend %q terminated by signal %s", e.Server, e.Status.Signal)
	}
	return fmt.Sprintf("backend %q exited with code %d", e.Server, e.Status.Code)
}
