// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/mcpdispatch/mcpdispatch/lib/cli"
	"github.com/mcpdispatch/mcpdispatch/lib/routecfg"
)

func listCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "list",
		Summary: "Show the route table",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to the route config file")
			return flags
		},
		Run: func(args []string) error {
			config, err := routecfg.Load(routecfg.Locate(configPath))
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(writer, "PATTERN\tSERVER\tCOMMAND")
			for _, mapping := range config.PathMappings {
				fmt.Fprintf(writer, "%s\t%s\t%s\n",
					mapping.PathPattern,
					mapping.Server.Name,
					strings.TrimSpace(mapping.Server.Command+" "+strings.Join(mapping.Server.Args, " ")),
				)
			}
			fmt.Fprintf(writer, "(default)\t%s\t%s\n",
				config.DefaultServer.Name,
				strings.TrimSpace(config.DefaultServer.Command+" "+strings.Join(config.DefaultServer.Args, " ")),
			)
			return writer.Flush()
		},
	}
}

func addCommand() *cli.Command {
	var (
		configPath  string
		description string
		envPairs    []string
	)

	return &cli.Command{
		Name:    "add",
		Summary: "Append a route rule",
		Usage:   "mcpdispatch add PATTERN NAME COMMAND [ARGS...] [flags]",
		Description: `Append a rule mapping a path pattern to a backend server. New rules
go at the end of the table, so existing rules keep their precedence.`,
		Examples: []cli.Example{
			{
				Description: "Route a web project tree to a dedicated server",
				Command:     `mcpdispatch add "/work/web*" web web-mcp --stdio`,
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("add", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to the route config file")
			flags.StringVar(&description, "description", "", "free-form note about the server")
			flags.StringArrayVar(&envPairs, "env", nil, "environment override KEY=VALUE (repeatable)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) < 3 {
				return fmt.Errorf("usage: mcpdispatch add PATTERN NAME COMMAND [ARGS...]")
			}

			env, err := parseEnvPairs(envPairs)
			if err != nil {
				return err
			}

			path := routecfg.Locate(configPath)
			config, err := routecfg.Load(path)
			if err != nil {
				return err
			}

			mapping := routecfg.Mapping{
				PathPattern: args[0],
				Server: routecfg.Server{
					Name:        args[1],
					Command:     args[2],
					Args:        args[3:],
					Env:         env,
					Description: description,
				},
			}
			config.AddMapping(mapping)
			if err := routecfg.Save(path, config); err != nil {
				return err
			}
			fmt.Printf("added %s -> %s\n", mapping.PathPattern, mapping.Server.Name)
			return nil
		},
	}
}

func removeCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "remove",
		Summary: "Remove route rules by pattern",
		Usage:   "mcpdispatch remove PATTERN [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("remove", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to the route config file")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: mcpdispatch remove PATTERN")
			}

			path := routecfg.Locate(configPath)
			config, err := routecfg.Load(path)
			if err != nil {
				return err
			}

			if !config.RemoveMapping(args[0]) {
				return fmt.Errorf("no rule with pattern %q", args[0])
			}
			if err := routecfg.Save(path, config); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}
}

func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed --env %q, want KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}
