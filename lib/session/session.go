// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/mcpdispatch/mcpdispatch/lib/relay"
	"github.com/mcpdispatch/mcpdispatch/lib/routing"
	"github.com/mcpdispatch/mcpdispatch/lib/supervise"
)

// State identifies where a session is in its lifecycle.
type State int32

const (
	StateInit State = iota
	StateRouting
	StateSpawning
	StateForwarding
	StateClosingClean
	StateClosingError
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRouting:
		return "routing"
	case StateSpawning:
		return "spawning"
	case StateForwarding:
		return "forwarding"
	case StateClosingClean:
		return "closing-clean"
	case StateClosingError:
		return "closing-error"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Process exit codes for the dispatcher. A child's own nonzero exit
// code and 128+signal pass through unchanged, so they share the space
// with these — the reserved values follow shell conventions where
// collisions are conventional (126 is "found but not runnable").
const (
	ExitClean         = 0
	ExitStreamFailure = 1
	ExitSpawnFailure  = 126

	exitSignalBase = 128
)

// DefaultGracePeriod bounds how long a backend gets to exit voluntarily
// after end-of-session before it is force-killed.
const DefaultGracePeriod = 5 * time.Second

// Config carries everything a session needs. The table and working
// directory come fully resolved from the configuration layer; the
// session never re-reads shared state after construction.
type Config struct {
	// Table is the immutable route table.
	Table routing.Table

	// WorkingDirectory is the resolved working-directory hint used for
	// routing and exported to the backend (see lib/workdir).
	WorkingDirectory string

	// Input and Output are the caller-facing streams. Default to
	// os.Stdin and os.Stdout.
	Input  io.Reader
	Output io.Writer

	// InheritedEnv is the base environment for the backend. Defaults
	// to os.Environ().
	InheritedEnv []string

	// GracePeriod bounds voluntary backend shutdown. Defaults to
	// DefaultGracePeriod.
	GracePeriod time.Duration

	// Logger receives session progress and failures. Defaults to
	// slog.Default(). Must write to stderr — stdout carries the stream.
	Logger *slog.Logger
}

// Session is one routing-plus-forwarding lifecycle for a single caller
// connection. Create with New, drive with Run, inspect afterwards with
// State, Target, and Err.
type Session struct {
	config Config
	state  atomic.Int32
	target routing.ServerSpec
	err    error
}

// New creates a session in StateInit, applying defaults for unset
// optional fields.
func New(config Config) *Session {
	if config.Input == nil {
		config.Input = os.Stdin
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.InheritedEnv == nil {
		config.InheritedEnv = os.Environ()
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = DefaultGracePeriod
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Session{config: config}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Target returns the backend the session resolved to. Valid once the
// session has left StateRouting.
func (s *Session) Target() routing.ServerSpec { return s.target }

// Err returns the error that put the session into CLOSING_ERROR, or nil
// after a clean session.
func (s *Session) Err() error { return s.err }

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// Run executes the session to completion and returns the process exit
// code the dispatcher should exit with. Cancelling ctx (host shutdown)
// terminates the backend and counts as a clean close.
//
// On return the child has been reaped and all streams released, on
// every path.
func (s *Session) Run(ctx context.Context) int {
	logger := s.config.Logger
	grace := s.config.GracePeriod

	s.setState(StateRouting)
	s.target = routing.Resolve(s.config.WorkingDirectory, s.config.Table)
	logger.Info("resolved backend",
		"workdir", s.config.WorkingDirectory,
		"server", s.target.Name,
		"command", s.target.Command,
	)

	s.setState(StateSpawning)
	child, err := supervise.Spawn(s.target, s.config.InheritedEnv, s.config.WorkingDirectory)
	if err != nil {
		s.err = err
		logger.Error("backend spawn failed", "server", s.target.Name, "error", err)
		s.setState(StateClosingError)
		s.setState(StateTerminated)
		return ExitSpawnFailure
	}
	defer child.Release()
	logger.Info("backend started", "server", s.target.Name, "pid", child.PID())

	s.setState(StateForwarding)
	streams := relay.Forward(s.config.Input, s.config.Output, child.Stdin(), child.Stdout())

	inbound := streams.CallerToChild
	outbound := streams.ChildToCaller
	var graceExpired <-chan time.Time
	var streamErr *StreamError
	var inResult, outResult *relay.Result
	callerClosed := false
	terminated := false
	var status supervise.ExitStatus

waitLoop:
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown requested, terminating backend", "pid", child.PID())
			status = child.Terminate(grace)
			terminated = true
			break waitLoop

		case result := <-inbound:
			inbound = nil
			inResult = &result
			if result.Err != nil {
				streamErr = &StreamError{Direction: "caller to backend", Err: result.Err}
				logger.Error("forwarding failed", "error", streamErr)
				status = child.Terminate(grace)
				terminated = true
				break waitLoop
			}
			// Caller hung up cleanly; the relay has already closed the
			// backend's stdin. Give the backend the grace period to
			// exit on EOF before escalating.
			callerClosed = true
			graceExpired = time.After(grace)

		case result := <-outbound:
			outbound = nil
			outResult = &result
			if result.Err != nil {
				streamErr = &StreamError{Direction: "backend to caller", Err: result.Err}
				logger.Error("forwarding failed", "error", streamErr)
				status = child.Terminate(grace)
				terminated = true
				break waitLoop
			}
			// Backend closed stdout; its exit usually follows within
			// moments. Keep waiting for the reap.

		case <-graceExpired:
			logger.Warn("backend did not exit after caller EOF, terminating",
				"server", s.target.Name, "pid", child.PID())
			status = child.Terminate(grace)
			terminated = true
			break waitLoop

		case <-child.Done():
			status = child.Wait()
			break waitLoop
		}
	}

	// Drain the backend→caller loop so every byte the backend wrote
	// before exiting reaches the caller. The loop is guaranteed to end:
	// the child is dead, so its stdout pipe is at EOF.
	if outbound != nil {
		result := <-outbound
		outResult = &result
		if result.Err != nil && streamErr == nil {
			streamErr = &StreamError{Direction: "backend to caller", Err: result.Err}
			logger.Error("forwarding failed", "error", streamErr)
		}
	}
	// The caller→backend loop may still be parked on a read of the
	// caller's input; it holds no resources the session needs, so it is
	// not waited for.

	child.Release()

	var callerBytes, backendBytes int64
	if inResult != nil {
		callerBytes = inResult.Bytes
	}
	if outResult != nil {
		backendBytes = outResult.Bytes
	}
	logger.Info("session over",
		"server", s.target.Name,
		"status", status.String(),
		"caller_closed", callerClosed,
		"caller_bytes", callerBytes,
		"backend_bytes", backendBytes,
	)

	return s.finish(streamErr, status, terminated)
}

// finish classifies the session outcome, records the terminal state and
// error, and returns the dispatcher exit code.
func (s *Session) finish(streamErr *StreamError, status supervise.ExitStatus, terminated bool) int {
	logger := s.config.Logger

	fail := func(err error, code int) int {
		s.err = err
		s.setState(StateClosingError)
		s.setState(StateTerminated)
		return code
	}
	clean := func() int {
		s.setState(StateClosingClean)
		s.setState(StateTerminated)
		return ExitClean
	}

	switch {
	case streamErr != nil:
		return fail(streamErr, ExitStreamFailure)

	case status.Err != nil:
		return fail(status.Err, ExitStreamFailure)

	case status.Signaled() && terminated:
		// The session itself delivered the fatal signal (shutdown or
		// grace expiry after caller EOF) — a deliberate close, not a
		// backend failure.
		return clean()

	case status.Signaled():
		exitErr := &ChildExitError{Server: s.target.Name, Status: status}
		logger.Error("backend died", "error", exitErr)
		return fail(exitErr, exitSignalBase+int(status.Signal))

	case status.Code != 0:
		exitErr := &ChildExitError{Server: s.target.Name, Status: status}
		logger.Error("backend failed", "error", exitErr)
		return fail(exitErr, status.Code)
	}

	// Clean shutdown: backend exited zero, whether on its own or after
	// the caller closed its side first.
	return clean()
}
