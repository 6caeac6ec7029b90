// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/mcpdispatch/mcpdispatch/lib/cli"
	"github.com/mcpdispatch/mcpdispatch/lib/routecfg"
)

func setupCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "setup",
		Summary: "Create a route config interactively",
		Description: `Walk through creating a config file: one default server that handles
unmatched directories, plus any number of path rules.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("setup", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "where to write the config (default: the discovered location)")
			return flags
		},
		Run: func(args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("setup is interactive and needs a terminal; " +
					"write the config file directly in non-interactive environments")
			}
			return runSetup(routecfg.Locate(configPath), os.Stdin, os.Stdout)
		},
	}
}

// runSetup drives the wizard over the given streams. Split from the
// command so tests can feed scripted answers.
func runSetup(path string, input io.Reader, output io.Writer) error {
	prompts := &prompter{reader: bufio.NewReader(input), output: output}

	if _, err := os.Stat(path); err == nil {
		overwrite, err := prompts.confirm(fmt.Sprintf("%s already exists. Overwrite?", path))
		if err != nil {
			return err
		}
		if !overwrite {
			return fmt.Errorf("setup cancelled")
		}
	}

	fmt.Fprintln(output, "The default server handles every directory no rule matches.")
	defaultServer, err := prompts.server("general")
	if err != nil {
		return err
	}

	config := &routecfg.Config{DefaultServer: &defaultServer}

	for {
		more, err := prompts.confirm("Add a path rule?")
		if err != nil {
			return err
		}
		if !more {
			break
		}

		pattern, err := prompts.ask("Path pattern (glob, e.g. /work/web*)", "")
		if err != nil {
			return err
		}
		if pattern == "" {
			fmt.Fprintln(output, "A rule needs a pattern; skipping.")
			continue
		}
		server, err := prompts.server("")
		if err != nil {
			return err
		}
		config.AddMapping(routecfg.Mapping{PathPattern: pattern, Server: server})
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration incomplete:\n%w", err)
	}
	if err := routecfg.Save(path, config); err != nil {
		return err
	}

	fmt.Fprintf(output, "\nWrote %s\n", path)
	fmt.Fprintln(output, "Check routing with: mcpdispatch resolve --path <directory>")
	return nil
}

type prompter struct {
	reader *bufio.Reader
	output io.Writer
}

// ask prints a label and reads one trimmed line, returning fallback on
// empty input.
func (p *prompter) ask(label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(p.output, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(p.output, "%s: ", label)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// confirm asks a yes/no question, defaulting to no.
func (p *prompter) confirm(label string) (bool, error) {
	answer, err := p.ask(label+" (y/N)", "n")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// server prompts for one backend server entry.
func (p *prompter) server(defaultName string) (routecfg.Server, error) {
	name, err := p.ask("Server name", defaultName)
	if err != nil {
		return routecfg.Server{}, err
	}
	command, err := p.ask("Command", "")
	if err != nil {
		return routecfg.Server{}, err
	}
	argsLine, err := p.ask("Arguments (space-separated, empty for none)", "")
	if err != nil {
		return routecfg.Server{}, err
	}
	description, err := p.ask("Description (optional)", "")
	if err != nil {
		return routecfg.Server{}, err
	}
	return routecfg.Server{
		Name:        name,
		Command:     command,
		Args:        strings.Fields(argsLine),
		Description: description,
	}, nil
}
