// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervise spawns and manages the backend MCP server process
// for one session.
//
// [Spawn] launches the command from a routing.ServerSpec with the
// session's environment and working directory, wiring the child's stdin
// and stdout to pipes owned by the caller. The child's stderr passes
// straight through to the dispatcher's stderr so backend diagnostics
// remain visible.
//
// The returned [Child] is exclusively owned by its session: exactly one
// of natural exit, [Child.Terminate], or process teardown reaps it. The
// pipes are created with os.Pipe rather than exec.Cmd's StdinPipe and
// StdoutPipe helpers, because cmd.Wait closes helper pipes and can
// discard buffered output; with caller-owned pipes the relay always
// drains the child's final bytes before seeing EOF.
package supervise
