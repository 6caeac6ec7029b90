// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/mcpdispatch/mcpdispatch/lib/cli"
	"github.com/mcpdispatch/mcpdispatch/lib/routecfg"
	"github.com/mcpdispatch/mcpdispatch/lib/session"
	"github.com/mcpdispatch/mcpdispatch/lib/workdir"
)

func runCommand() *cli.Command {
	var (
		configPath   string
		workdirFlag  string
		logLevelName string
		gracePeriod  time.Duration
	)

	return &cli.Command{
		Name:    "run",
		Summary: "Start a session: route by working directory and relay to the backend",
		Description: `Run one dispatch session on stdio.

The working directory used for routing comes from, in order:
the --workdir flag, the ` + workdir.OverrideEnv + ` environment variable,
PWD, and finally this process's own current directory.

All logging goes to stderr; stdout carries the MCP stream untouched.`,
		Examples: []cli.Example{
			{Description: "Serve a session using the discovered config", Command: "mcpdispatch run"},
			{Description: "Pin the routing directory explicitly", Command: "mcpdispatch run --workdir /work/site"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to the route config file")
			flags.StringVar(&workdirFlag, "workdir", "", "working-directory hint (overrides environment sources)")
			flags.StringVar(&logLevelName, "log-level", "info", "log level: debug, info, warn, error")
			flags.DurationVar(&gracePeriod, "grace-period", session.DefaultGracePeriod,
				"how long the backend gets to exit voluntarily before being killed")
			return flags
		},
		Run: func(args []string) error {
			logger := newLogger(logLevelName)
			slog.SetDefault(logger)

			config, err := routecfg.Load(routecfg.Locate(configPath))
			if err != nil {
				return err
			}

			hint := workdirFlag
			if hint != "" {
				if hint, err = filepath.Abs(hint); err != nil {
					return fmt.Errorf("resolving --workdir: %w", err)
				}
			} else if hint, err = workdir.Hint(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			sess := session.New(session.Config{
				Table:            config.Table(),
				WorkingDirectory: hint,
				GracePeriod:      gracePeriod,
				Logger:           logger,
			})
			os.Exit(sess.Run(ctx))
			return nil
		},
	}
}

// newLogger builds the structured logger. JSON on stderr: stdout is the
// session transport and must never receive log output.
func newLogger(levelName string) *slog.Logger {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
