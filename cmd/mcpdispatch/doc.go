// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Mcpdispatch routes an MCP stdio session to one of several backend
// MCP servers based on the caller's working directory, then relays the
// message stream transparently for the life of the session.
//
// Point an MCP client at the bare binary (it defaults to "run"), or use
// the management subcommands to inspect and edit the route table:
//
//	mcpdispatch run                  start a session on stdio
//	mcpdispatch resolve --path DIR   show which backend DIR selects
//	mcpdispatch list                 show the route table
//	mcpdispatch add PATTERN NAME COMMAND [ARGS...]
//	mcpdispatch remove PATTERN
//	mcpdispatch setup                interactive first-time configuration
package main
