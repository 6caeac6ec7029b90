// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mcpdispatch/mcpdispatch/lib/routing"
	"github.com/mcpdispatch/mcpdispatch/lib/workdir"
)

// SpawnError reports a backend that could not be started: the command
// was not found, not executable, or process creation was refused. It is
// never retried — a missing backend is persistent, not transient.
type SpawnError struct {
	// Command and Args identify the attempted invocation.
	Command string
	Args    []string

	// Err is the underlying error from the operating system.
	Err error
}

func (e *SpawnError) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("spawning backend %q: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("spawning backend %q (args %s): %v",
		e.Command, strings.Join(e.Args, " "), e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitStatus is the terminal status of a child process.
type ExitStatus struct {
	// Code is the exit code, or -1 when the child was signaled or the
	// wait itself failed.
	Code int

	// Signal is the terminating signal, zero when the child exited.
	Signal syscall.Signal

	// Err is set when waiting failed for a reason other than the child
	// exiting (which should not happen for a child this process owns).
	Err error
}

// Success reports whether the child exited normally with code zero.
func (s ExitStatus) Success() bool {
	return s.Err == nil && s.Signal == 0 && s.Code == 0
}

// Signaled reports whether the child was terminated by a signal.
func (s ExitStatus) Signaled() bool { return s.Signal != 0 }

func (s ExitStatus) String() string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("wait failed: %v", s.Err)
	case s.Signaled():
		return fmt.Sprintf("signal %s", s.Signal)
	default:
		return fmt.Sprintf("exit code %d", s.Code)
	}
}

// Child is a running backend process with caller-owned stdin and stdout
// pipes. All methods are safe for the single-session ownership model:
// one goroutine reaps, Terminate may be called from another.
type Child struct {
	spec routing.ServerSpec
	cmd  *exec.Cmd

	stdin  *os.File // write end of the child's stdin pipe
	stdout *os.File // read end of the child's stdout pipe

	done   chan struct{}
	status ExitStatus

	closeStdinOnce sync.Once
	releaseOnce    sync.Once
}

// Spawn starts the backend described by spec. The child's environment
// is the inherited environment with spec.Env applied on top, plus the
// working-directory hint exported as PWD and MCP_DISPATCH_WORKDIR so
// the backend (and any nested dispatcher) agrees with the routing
// decision. When the hint names an existing directory the child also
// starts in it.
//
// On failure the returned error is a *SpawnError and no process is left
// running.
func Spawn(spec routing.ServerSpec, inheritedEnv []string, workingDirectory string) (*Child, error) {
	if spec.Command == "" {
		return nil, &SpawnError{Command: spec.Command, Args: spec.Args,
			Err: errors.New("server spec has empty command")}
	}

	stdinRead, stdinWrite, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Command: spec.Command, Args: spec.Args,
			Err: fmt.Errorf("creating stdin pipe: %w", err)}
	}
	stdoutRead, stdoutWrite, err := os.Pipe()
	if err != nil {
		stdinRead.Close()
		stdinWrite.Close()
		return nil, &SpawnError{Command: spec.Command, Args: spec.Args,
			Err: fmt.Errorf("creating stdout pipe: %w", err)}
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Stdin = stdinRead
	cmd.Stdout = stdoutWrite
	cmd.Stderr = os.Stderr
	cmd.Env = MergeEnv(inheritedEnv, spec.Env, workingDirectory)
	if workingDirectory != "" {
		if info, statErr := os.Stat(workingDirectory); statErr == nil && info.IsDir() {
			cmd.Dir = workingDirectory
		}
	}

	if err := cmd.Start(); err != nil {
		stdinRead.Close()
		stdinWrite.Close()
		stdoutRead.Close()
		stdoutWrite.Close()
		return nil, &SpawnError{Command: spec.Command, Args: spec.Args, Err: err}
	}

	// The child holds its own copies of the pipe ends; close ours so
	// EOF propagates correctly in both directions.
	stdinRead.Close()
	stdoutWrite.Close()

	child := &Child{
		spec:   spec,
		cmd:    cmd,
		stdin:  stdinWrite,
		stdout: stdoutRead,
		done:   make(chan struct{}),
	}

	go func() {
		child.status = statusFromWait(cmd.Wait())
		close(child.done)
	}()

	return child, nil
}

// Spec returns the server spec the child was spawned from.
func (c *Child) Spec() routing.ServerSpec { return c.spec }

// PID returns the operating-system process ID of the child.
func (c *Child) PID() int { return c.cmd.Process.Pid }

// Stdin is the writable stream to the child's standard input.
func (c *Child) Stdin() io.WriteCloser { return &stdinCloser{child: c} }

// Stdout is the readable stream from the child's standard output. It
// reaches EOF only after the child has exited and all buffered output
// has been drained.
func (c *Child) Stdout() io.Reader { return c.stdout }

// Done is closed once the child has been reaped.
func (c *Child) Done() <-chan struct{} { return c.done }

// Wait blocks until the child has exited and been reaped, then returns
// its terminal status. Safe to call from multiple goroutines.
func (c *Child) Wait() ExitStatus {
	<-c.done
	return c.status
}

// Signal delivers a signal to the child. Errors are returned but are
// usually ignorable: delivery to an already-exited child fails
// harmlessly.
func (c *Child) Signal(signal os.Signal) error {
	return c.cmd.Process.Signal(signal)
}

// CloseStdin closes the child's input stream, signaling end-of-session
// to a well-behaved backend. Idempotent.
func (c *Child) CloseStdin() {
	c.closeStdinOnce.Do(func() { c.stdin.Close() })
}

// Terminate shuts the child down: close its stdin, send SIGTERM, wait
// up to grace for a voluntary exit, then force-kill. It always returns
// with the child reaped — no orphan remains on any path. Safe to call
// after the child has already exited.
func (c *Child) Terminate(grace time.Duration) ExitStatus {
	c.CloseStdin()

	select {
	case <-c.done:
		return c.status
	default:
	}

	// Ignore delivery errors: the child may exit between the check
	// above and the signal landing.
	_ = c.cmd.Process.Signal(syscall.SIGTERM)

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-c.done:
	case <-timer.C:
		_ = c.cmd.Process.Kill()
		<-c.done
	}
	return c.status
}

// Release closes the caller-owned pipe ends. Call after the session is
// over; the relay will already have observed EOF on stdout by then.
// Idempotent.
func (c *Child) Release() {
	c.releaseOnce.Do(func() {
		c.CloseStdin()
		c.stdout.Close()
	})
}

// stdinCloser routes Close through CloseStdin so the relay closing the
// stream and Terminate closing it do not race on the underlying file.
type stdinCloser struct {
	child *Child
}

func (w *stdinCloser) Write(p []byte) (int, error) { return w.child.stdin.Write(p) }

func (w *stdinCloser) Close() error {
	w.child.CloseStdin()
	return nil
}

// statusFromWait converts the error from cmd.Wait into an ExitStatus.
func statusFromWait(err error) ExitStatus {
	if err == nil {
		return ExitStatus{}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if waitStatus, ok := exitErr.Sys().(syscall.WaitStatus); ok && waitStatus.Signaled() {
			return ExitStatus{Code: -1, Signal: waitStatus.Signal()}
		}
		return ExitStatus{Code: exitErr.ExitCode()}
	}
	return ExitStatus{Code: -1, Err: err}
}

// MergeEnv builds the child environment: the inherited environment with
// overrides applied on top (replacing existing entries), then the
// working-directory hint exported as PWD and as the dispatch override
// variable. Overrides are applied in sorted key order so the result is
// deterministic.
func MergeEnv(inherited []string, overrides map[string]string, workingDirectory string) []string {
	merged := make([]string, len(inherited))
	copy(merged, inherited)

	setEnv := func(key, value string) {
		prefix := key + "="
		for i, entry := range merged {
			if strings.HasPrefix(entry, prefix) {
				merged[i] = prefix + value
				return
			}
		}
		merged = append(merged, prefix+value)
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		setEnv(key, overrides[key])
	}

	if workingDirectory != "" {
		setEnv("PWD", workingDirectory)
		setEnv(workdir.OverrideEnv, workingDirectory)
	}
	return merged
}
