// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mcpdispatch/mcpdispatch/lib/cli"
	"github.com/mcpdispatch/mcpdispatch/lib/routecfg"
	"github.com/mcpdispatch/mcpdispatch/lib/routing"
	"github.com/mcpdispatch/mcpdispatch/lib/workdir"
)

func resolveCommand() *cli.Command {
	var (
		configPath string
		pathFlag   string
	)

	return &cli.Command{
		Name:    "resolve",
		Summary: "Show which backend a path would select, without spawning anything",
		Description: `Dry-run the routing decision for a path (default: the current
working-directory hint) and print the selected backend.`,
		Examples: []cli.Example{
			{Description: "Check routing for a project directory", Command: "mcpdispatch resolve --path /work/web-app"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to the route config file")
			flags.StringVar(&pathFlag, "path", "", "directory to resolve (defaults to the working-directory hint)")
			return flags
		},
		Run: func(args []string) error {
			config, err := routecfg.Load(routecfg.Locate(configPath))
			if err != nil {
				return err
			}

			path := pathFlag
			if path == "" {
				if path, err = workdir.Hint(); err != nil {
					return err
				}
			}

			table := config.Table()
			selected := routing.Resolve(path, table)

			// Recover which rule matched for the report; Resolve itself
			// only returns the target.
			matched := "(default)"
			normalized := routing.NormalizePath(path)
			for _, rule := range table.Rules {
				if routing.Match(routing.NormalizePath(rule.Pattern), normalized) {
					matched = rule.Pattern
					break
				}
			}

			fmt.Printf("Path:    %s\n", path)
			fmt.Printf("Rule:    %s\n", matched)
			fmt.Printf("Server:  %s\n", selected.Name)
			fmt.Printf("Command: %s\n", commandLine(selected))
			if selected.Description != "" {
				fmt.Printf("About:   %s\n", selected.Description)
			}
			return nil
		},
	}
}

func commandLine(spec routing.ServerSpec) string {
	if len(spec.Args) == 0 {
		return spec.Command
	}
	return spec.Command + " " + strings.Join(spec.Args, " ")
}
