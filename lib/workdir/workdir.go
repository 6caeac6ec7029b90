// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package workdir determines the working-directory hint used as the
// routing key for a session.
//
// The dispatcher is typically launched by an MCP client, and the
// dispatcher's own current directory is not reliably the caller's
// project directory — clients spawn servers from wherever they happen
// to run. The hint is therefore sourced with explicit precedence:
//
//  1. MCP_DISPATCH_WORKDIR — set by the client (or a wrapper) to name
//     the directory the session is about. Always wins when present.
//  2. PWD — the logical working directory exported by the invoking
//     shell or client.
//  3. The dispatcher process's own current directory, as a last resort.
//
// Routing against the wrong source silently selects the wrong backend,
// so callers should prefer the override variable whenever they can set
// it.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// OverrideEnv is the environment variable a client sets to pin the
// working-directory hint for the session, overriding PWD and the
// dispatcher's own current directory.
const OverrideEnv = "MCP_DISPATCH_WORKDIR"

// Hint returns the working-directory hint for this invocation as an
// absolute, cleaned path. See the package documentation for the source
// precedence. It fails only when no environment source is set and the
// process working directory cannot be determined.
func Hint() (string, error) {
	if override := os.Getenv(OverrideEnv); override != "" {
		return absolute(override)
	}
	if pwd := os.Getenv("PWD"); pwd != "" {
		return absolute(pwd)
	}
	directory, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining working directory: %w", err)
	}
	return directory, nil
}

func absolute(path string) (string, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving working directory hint %q: %w", path, err)
	}
	return resolved, nil
}
