// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/mcpdispatch/mcpdispatch/lib/cli"
	"github.com/mcpdispatch/mcpdispatch/lib/process"
	"github.com/mcpdispatch/mcpdispatch/lib/version"
)

func main() {
	args := os.Args[1:]

	if len(args) > 0 && (args[0] == "--version" || args[0] == "version") {
		fmt.Printf("mcpdispatch %s\n", version.Info())
		return
	}

	// With no arguments the binary behaves as "run": MCP clients are
	// configured with just the executable path and expect a server to
	// appear on stdio.
	if len(args) == 0 {
		args = []string{"run"}
	}

	if err := rootCommand().Execute(args); err != nil {
		process.Fatal(err)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcpdispatch",
		Summary: "Working-directory router for MCP sessions",
		Description: `mcpdispatch picks a backend MCP server for each session based on the
caller's working directory and relays the session to it transparently.

Routing uses an ordered list of glob rules over the working directory;
the first match wins, and a default server catches everything else.`,
		Subcommands: []*cli.Command{
			runCommand(),
			resolveCommand(),
			listCommand(),
			addCommand(),
			removeCommand(),
			setupCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Println("mcpdispatch " + version.Full())
			return nil
		},
	}
}
