// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package routing resolves a working directory to the backend MCP server
// that should handle the session.
//
// A [Table] is an ordered list of (pattern, server) rules plus a default
// server. [Resolve] walks the rules in order and returns the server of
// the first pattern that matches the directory; when nothing matches it
// returns the default. Resolution is pure and total — it never touches
// the filesystem and never fails.
//
// # Pattern dialect
//
// Patterns use shell-style globbing over the full path string:
//
//   - "*" matches any run of characters, including "/"
//   - "?" matches exactly one character
//   - "[seq]" matches one character in seq, "[!seq]" one character not
//     in seq; ranges like "[a-z]" are supported
//
// Because "*" crosses directory separators, a pattern like "/repo/a*"
// matches both "/repo/a" and "/repo/a/sub". Matching is case-sensitive.
// Brace alternation ("{web,api}") is not part of the dialect and is
// treated literally, and so is the "[" of an unterminated character
// class.
//
// Paths and patterns are normalized to forward slashes before matching,
// so tables written with "/" work against Windows-style paths.
package routing
