// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"strings"
)

// ServerSpec describes one backend MCP server: the command to launch it
// and the environment overrides it needs. Specs come fully resolved from
// the configuration layer — no PATH searching or discovery happens here.
type ServerSpec struct {
	// Name identifies the server in logs and diagnostic output.
	Name string

	// Command is the executable to launch. Must be non-empty.
	Command string

	// Args are passed to the command in order.
	Args []string

	// Env contains environment overrides applied on top of the
	// inherited environment when the server is spawned.
	Env map[string]string

	// Description is free-form text shown by the management CLI.
	Description string
}

// Rule maps a path pattern to the server that handles sessions whose
// working directory matches it.
type Rule struct {
	// Pattern is a glob over the normalized working directory. See the
	// package documentation for the supported dialect.
	Pattern string

	// Server handles sessions matched by Pattern.
	Server ServerSpec
}

// Table is an ordered rule list plus a default server. Order is
// significant: the first matching rule wins, regardless of how specific
// later rules are. A Table is immutable once constructed — the session
// core never modifies it.
type Table struct {
	Rules   []Rule
	Default ServerSpec
}

// Resolve returns the server that handles the given working directory:
// the server of the first rule whose pattern matches the normalized
// path, or the table's default when no rule matches. It never fails —
// the default is the normal no-match outcome, not an error.
func Resolve(path string, table Table) ServerSpec {
	normalized := NormalizePath(path)
	for _, rule := range table.Rules {
		if Match(NormalizePath(rule.Pattern), normalized) {
			return rule.Server
		}
	}
	return table.Default
}

// NormalizePath converts backslash separators to forward slashes so
// patterns written with "/" match paths from any platform.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
