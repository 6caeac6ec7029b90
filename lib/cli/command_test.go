// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesSubcommand(t *testing.T) {
	ran := false
	root := &Command{
		Name: "tool",
		Subcommands: []*Command{
			{Name: "go", Summary: "run it", Run: func(args []string) error {
				ran = true
				return nil
			}},
		},
	}

	if err := root.Execute([]string{"go"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Error("subcommand did not run")
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var path string
	var remaining []string
	command := &Command{
		Name: "resolve",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			flags.StringVar(&path, "path", "", "path to test")
			return flags
		},
		Run: func(args []string) error {
			remaining = args
			return nil
		},
	}

	if err := command.Execute([]string{"--path", "/somewhere", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if path != "/somewhere" {
		t.Errorf("flag value = %q, want %q", path, "/somewhere")
	}
	if len(remaining) != 1 || remaining[0] != "extra" {
		t.Errorf("positional args = %v, want [extra]", remaining)
	}
}

func TestExecuteSuggestsCommand(t *testing.T) {
	root := &Command{
		Name: "tool",
		Subcommands: []*Command{
			{Name: "resolve", Summary: ""},
			{Name: "list", Summary: ""},
		},
	}

	err := root.Execute([]string{"resolv"})
	if err == nil {
		t.Fatal("unknown command did not error")
	}
	if !strings.Contains(err.Error(), `did you mean "resolve"`) {
		t.Errorf("error %q lacks suggestion", err)
	}
}

func TestExecuteUnknownFlag(t *testing.T) {
	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("run", pflag.ContinueOnError)
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--bogus"})
	if err == nil {
		t.Fatal("unknown flag did not error")
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error %q does not point at --help", err)
	}
}

func TestPrintHelpListsSubcommands(t *testing.T) {
	root := &Command{
		Name:    "tool",
		Summary: "does things",
		Subcommands: []*Command{
			{Name: "alpha", Summary: "first thing"},
			{Name: "beta", Summary: "second thing"},
		},
	}

	var output strings.Builder
	root.PrintHelp(&output)
	help := output.String()
	for _, want := range []string{"alpha", "first thing", "beta", "Commands:"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"resolv", "resolve", 1},
		{"lsit", "list", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := editDistance(test.a, test.b); got != test.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
