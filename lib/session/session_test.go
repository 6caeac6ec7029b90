// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mcpdispatch/mcpdispatch/lib/routing"
	"github.com/mcpdispatch/mcpdispatch/lib/supervise"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func singleServerTable(spec routing.ServerSpec) routing.Table {
	return routing.Table{Default: spec}
}

func TestRunCleanEcho(t *testing.T) {
	input := "Content-Length: 2\r\n\r\n{}"
	var output bytes.Buffer

	sess := New(Config{
		Table:            singleServerTable(routing.ServerSpec{Name: "cat", Command: "cat"}),
		WorkingDirectory: "/tmp",
		Input:            strings.NewReader(input),
		Output:           &output,
		Logger:           quietLogger(),
	})

	code := sess.Run(context.Background())
	if code != ExitClean {
		t.Fatalf("Run = %d, want %d", code, ExitClean)
	}
	if output.String() != input {
		t.Errorf("relayed output = %q, want %q", output.String(), input)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want %v", sess.State(), StateTerminated)
	}
	if sess.Err() != nil {
		t.Errorf("Err = %v, want nil", sess.Err())
	}
}

func TestRunRoutesByWorkingDirectory(t *testing.T) {
	table := routing.Table{
		Rules: []routing.Rule{
			{Pattern: "/web/*", Server: routing.ServerSpec{Name: "web-backend", Command: "true"}},
		},
		Default: routing.ServerSpec{Name: "fallback", Command: "true"},
	}

	sess := New(Config{
		Table:            table,
		WorkingDirectory: "/web/site",
		Input:            strings.NewReader(""),
		Output:           &bytes.Buffer{},
		Logger:           quietLogger(),
	})
	sess.Run(context.Background())

	if sess.Target().Name != "web-backend" {
		t.Errorf("resolved target = %q, want %q", sess.Target().Name, "web-backend")
	}
}

func TestRunSpawnFailure(t *testing.T) {
	sess := New(Config{
		Table: singleServerTable(routing.ServerSpec{
			Name:    "ghost",
			Command: "definitely-not-an-installed-command",
		}),
		WorkingDirectory: "/tmp",
		Input:            strings.NewReader(""),
		Output:           &bytes.Buffer{},
		Logger:           quietLogger(),
	})

	code := sess.Run(context.Background())
	if code != ExitSpawnFailure {
		t.Fatalf("Run = %d, want %d", code, ExitSpawnFailure)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want %v", sess.State(), StateTerminated)
	}

	var spawnErr *supervise.SpawnError
	if !errors.As(sess.Err(), &spawnErr) {
		t.Errorf("Err = %T, want *supervise.SpawnError", sess.Err())
	}
}

func TestRunChildNonzeroExit(t *testing.T) {
	sess := New(Config{
		Table: singleServerTable(routing.ServerSpec{
			Name:    "failing",
			Command: "sh",
			Args:    []string{"-c", "exit 3"},
		}),
		WorkingDirectory: "/tmp",
		Input:            strings.NewReader(""),
		Output:           &bytes.Buffer{},
		Logger:           quietLogger(),
	})

	code := sess.Run(context.Background())
	if code != 3 {
		t.Fatalf("Run = %d, want child's exit code 3", code)
	}

	var exitErr *ChildExitError
	if !errors.As(sess.Err(), &exitErr) {
		t.Fatalf("Err = %T, want *ChildExitError", sess.Err())
	}
	if exitErr.Status.Code != 3 {
		t.Errorf("ChildExitError code = %d, want 3", exitErr.Status.Code)
	}
}

func TestRunChildKilledBySignal(t *testing.T) {
	sess := New(Config{
		Table: singleServerTable(routing.ServerSpec{
			Name:    "suicidal",
			Command: "sh",
			Args:    []string{"-c", "kill -TERM $$"},
		}),
		WorkingDirectory: "/tmp",
		Input:            strings.NewReader(""),
		Output:           &bytes.Buffer{},
		Logger:           quietLogger(),
	})

	code := sess.Run(context.Background())
	if code != exitSignalBase+15 {
		t.Fatalf("Run = %d, want %d (128+SIGTERM)", code, exitSignalBase+15)
	}

	var exitErr *ChildExitError
	if !errors.As(sess.Err(), &exitErr) {
		t.Fatalf("Err = %T, want *ChildExitError", sess.Err())
	}
	if !exitErr.Status.Signaled() {
		t.Errorf("status = %v, want signaled", exitErr.Status)
	}
}

// failingWriter rejects every write, standing in for a caller whose
// connection has broken in a way the relay cannot classify as a normal
// hangup.
type failingWriter struct {
	err error
}

func (w *failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestRunStreamFailure(t *testing.T) {
	// Keep the caller→backend direction idle so the only event is the
	// backend→caller write failing.
	idleRead, idleWrite := io.Pipe()
	defer idleWrite.Close()

	writeErr := errors.New("caller output torn down")
	sess := New(Config{
		Table: singleServerTable(routing.ServerSpec{
			Name:    "chatty",
			Command: "sh",
			Args:    []string{"-c", "echo hello; sleep 2"},
		}),
		WorkingDirectory: "/tmp",
		Input:            idleRead,
		Output:           &failingWriter{err: writeErr},
		GracePeriod:      200 * time.Millisecond,
		Logger:           quietLogger(),
	})

	code := sess.Run(context.Background())
	if code != ExitStreamFailure {
		t.Fatalf("Run = %d, want %d", code, ExitStreamFailure)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want %v", sess.State(), StateTerminated)
	}

	var streamErr *StreamError
	if !errors.As(sess.Err(), &streamErr) {
		t.Fatalf("Err = %T, want *StreamError", sess.Err())
	}
	if !errors.Is(streamErr, writeErr) {
		t.Errorf("StreamError wraps %v, want %v", streamErr.Err, writeErr)
	}
}

// After the caller hangs up, a backend that ignores EOF and SIGTERM is
// force-killed within the grace period and the session still counts as
// a clean close.
func TestRunStubbornBackendIsReaped(t *testing.T) {
	sess := New(Config{
		Table: singleServerTable(routing.ServerSpec{
			Name:    "stubborn",
			Command: "sh",
			Args:    []string{"-c", `trap '' TERM; while :; do sleep 0.05; done`},
		}),
		WorkingDirectory: "/tmp",
		Input:            strings.NewReader(""),
		Output:           &bytes.Buffer{},
		GracePeriod:      150 * time.Millisecond,
		Logger:           quietLogger(),
	})

	start := time.Now()
	code := sess.Run(context.Background())
	elapsed := time.Since(start)

	if code != ExitClean {
		t.Errorf("Run = %d, want %d (deliberate kill is a clean close)", code, ExitClean)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want %v", sess.State(), StateTerminated)
	}
	if elapsed > 10*time.Second {
		t.Errorf("session took %v; backend was not reaped promptly", elapsed)
	}
}

// Host shutdown (context cancellation) propagates to the backend and
// releases everything.
func TestRunCancellationTerminatesBackend(t *testing.T) {
	// A caller that never sends anything and never closes keeps the
	// session in FORWARDING until cancellation.
	idleRead, idleWrite := io.Pipe()
	defer idleWrite.Close()

	sess := New(Config{
		Table:            singleServerTable(routing.ServerSpec{Name: "cat", Command: "cat"}),
		WorkingDirectory: "/tmp",
		Input:            idleRead,
		Output:           &bytes.Buffer{},
		GracePeriod:      time.Second,
		Logger:           quietLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	code := sess.Run(ctx)
	if code != ExitClean {
		t.Errorf("Run = %d, want %d", code, ExitClean)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want %v", sess.State(), StateTerminated)
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateInit:         "init",
		StateRouting:      "routing",
		StateSpawning:     "spawning",
		StateForwarding:   "forwarding",
		StateClosingClean: "closing-clean",
		StateClosingError: "closing-error",
		StateTerminated:   "terminated",
		State(42):         "unknown",
	}
	for state, want := range states {
		if state.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", state, state.String(), want)
		}
	}
}
