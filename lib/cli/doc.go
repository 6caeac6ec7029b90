// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the mcpdispatch
// binary: a tree of named commands with pflag flag sets, consistent
// help rendering, and typo suggestions for unknown subcommands.
//
// All human-facing output (help, errors) goes to stderr. Stdout is
// never written by the framework — when the dispatcher runs a session,
// stdout belongs to the MCP stream.
package cli
