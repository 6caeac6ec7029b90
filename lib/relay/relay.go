// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay copies the framed MCP message stream between the caller
// and the backend, one independent loop per direction.
//
// The relay is byte-transparent: it never parses, validates, or alters
// the stream, and each direction preserves byte order exactly. There is
// no idle timeout — silence on a channel is a valid state of an MCP
// session, not an error. One direction ending does not cancel the
// other; the session layer decides when the whole exchange is over.
package relay

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// Result is the outcome of one direction of the relay.
type Result struct {
	// Bytes is the number of bytes delivered before the loop ended.
	Bytes int64

	// Err is the I/O error that ended the loop, nil for a clean
	// end-of-stream on the source. Expected closure errors (EOF,
	// closed pipe, broken pipe, reset) are already filtered out.
	Err error
}

// Streams exposes the two relay directions. Each channel delivers
// exactly one Result when its loop ends. Both channels are buffered, so
// the loops never block on an absent reader.
type Streams struct {
	// CallerToChild completes when the caller's input reaches EOF or a
	// write to the child fails. The child's stdin is closed before the
	// result is delivered, so a well-behaved backend sees end-of-session.
	CallerToChild <-chan Result

	// ChildToCaller completes when the child's output reaches EOF
	// (child exited or closed stdout) or a write to the caller fails.
	ChildToCaller <-chan Result
}

// Forward starts both relay loops and returns immediately. callerIn and
// callerOut are the dispatcher's own stdio (or test pipes); childIn and
// childOut are the backend's stdin and stdout.
//
// When the child→caller loop ends, callerOut is closed if it implements
// io.Closer, signaling end-of-stream to the caller where the transport
// permits.
func Forward(callerIn io.Reader, callerOut io.Writer, childIn io.WriteCloser, childOut io.Reader) Streams {
	callerToChild := make(chan Result, 1)
	childToCaller := make(chan Result, 1)

	go func() {
		bytesCopied, err := io.Copy(childIn, callerIn)
		childIn.Close()
		callerToChild <- Result{Bytes: bytesCopied, Err: filterClosed(err)}
	}()

	go func() {
		bytesCopied, err := io.Copy(callerOut, childOut)
		if closer, ok := callerOut.(io.Closer); ok {
			closer.Close()
		}
		childToCaller <- Result{Bytes: bytesCopied, Err: filterClosed(err)}
	}()

	return Streams{
		CallerToChild: callerToChild,
		ChildToCaller: childToCaller,
	}
}

// filterClosed drops errors that represent normal stream closure rather
// than a fault: the peer going away mid-copy is how sessions end, not a
// failure to report.
func filterClosed(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, os.ErrClosed),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET):
		return nil
	}
	return err
}
