// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package session runs one end-to-end dispatch: resolve the working
// directory to a backend, spawn it, relay the message stream in both
// directions, and guarantee the backend is reaped on every exit path.
//
// A session moves through a fixed sequence of states:
//
//	INIT → ROUTING → SPAWNING → FORWARDING → CLOSING_* → TERMINATED
//
// Routing never fails (the table's default always resolves). Spawning
// can fail; forwarding can fail; the backend can exit nonzero or die
// from a signal. Each of those outcomes maps to a distinct process exit
// code so a supervising host can tell "backend not found" from "backend
// crashed" from "caller disconnected":
//
//	0    clean shutdown (caller EOF or backend exited zero)
//	1    stream I/O failure during forwarding
//	126  backend could not be spawned
//	N    backend exited with nonzero code N
//	128+S backend terminated by signal S
//
// One session owns exactly one child process. Whatever ends the session
// — natural exit, caller hangup, host shutdown, I/O fault — the child
// is reaped before Run returns, force-killed if it outlives the grace
// period.
package session
