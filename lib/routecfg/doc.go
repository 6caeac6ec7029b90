// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package routecfg loads, validates, and saves the dispatcher's route
// configuration, producing the immutable routing.Table the session core
// consumes.
//
// The config file is discovered with this precedence:
//
//  1. an explicit --config path
//  2. the MCP_DISPATCHER_CONFIG environment variable
//  3. ./config.json in the current directory
//  4. the per-user default, $XDG_CONFIG_HOME/mcpdispatch/config.json
//
// Files ending in .yaml or .yml are parsed as YAML; everything else is
// parsed as JSON with comments and trailing commas permitted (JSONC).
// Saves always write plain JSON atomically (temporary file, fsync,
// rename) so a crashed save never leaves a truncated config behind.
//
// Validation happens at load time, before any session starts. The
// session core receives only tables that passed validation.
package routecfg
