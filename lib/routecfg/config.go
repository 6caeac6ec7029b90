// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package routecfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mcpdispatch/mcpdispatch/lib/routing"
)

// EnvVar names the environment variable that points at the config file
// when no --config flag is given.
const EnvVar = "MCP_DISPATCHER_CONFIG"

// localConfigName is probed in the current directory before falling
// back to the per-user default path.
const localConfigName = "config.json"

// Config is the on-disk route configuration. The field names match the
// original dispatcher's JSON schema so existing config files keep
// working.
type Config struct {
	// PathMappings are the ordered route rules. Order is significant:
	// the first matching pattern wins.
	PathMappings []Mapping `json:"path_mappings" yaml:"path_mappings"`

	// DefaultServer handles sessions no mapping matches. Required.
	DefaultServer *Server `json:"default_mcp_server" yaml:"default_mcp_server"`
}

// Mapping binds a path pattern to a backend server.
type Mapping struct {
	PathPattern string `json:"path_pattern" yaml:"path_pattern"`
	Server      Server `json:"mcp_server" yaml:"mcp_server"`
}

// Server describes one backend MCP server entry.
type Server struct {
	Name        string            `json:"name" yaml:"name"`
	Command     string            `json:"command" yaml:"command"`
	Args        []string          `json:"args" yaml:"args"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultPath returns the per-user config location,
// $XDG_CONFIG_HOME/mcpdispatch/config.json.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "mcpdispatch", localConfigName)
}

// Locate resolves the config file path. flagPath is the --config value,
// empty when the flag was not given. The returned path is not
// guaranteed to exist — Load reports a missing file with guidance.
func Locate(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if fromEnv := os.Getenv(EnvVar); fromEnv != "" {
		return fromEnv
	}
	if _, err := os.Stat(localConfigName); err == nil {
		return localConfigName
	}
	return DefaultPath()
}

// Load reads, parses, and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s\n\n"+
				"Run 'mcpdispatch setup' to create one, or point %s at an existing file.",
				path, EnvVar)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s:\n%w", path, err)
	}
	return config, nil
}

// Validate checks the configuration is complete enough to route with.
// All problems are reported at once, one per line, so a broken config
// is fixed in one pass rather than error by error.
func (c *Config) Validate() error {
	var problems []string

	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.DefaultServer == nil {
		report("missing default_mcp_server")
	} else {
		if c.DefaultServer.Command == "" {
			report("default_mcp_server has no command")
		}
		if c.DefaultServer.Name == "" {
			report("default_mcp_server has no name")
		}
	}

	for i, mapping := range c.PathMappings {
		if mapping.PathPattern == "" {
			report("path_mappings[%d] missing path_pattern", i)
		}
		if mapping.Server.Command == "" {
			report("path_mappings[%d] (%q) server has no command", i, mapping.PathPattern)
		}
		if mapping.Server.Name == "" {
			report("path_mappings[%d] (%q) server has no name", i, mapping.PathPattern)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("  - %s", strings.Join(problems, "\n  - "))
}

// Table converts the validated config into the immutable route table
// the session core consumes.
func (c *Config) Table() routing.Table {
	table := routing.Table{
		Rules: make([]routing.Rule, 0, len(c.PathMappings)),
	}
	for _, mapping := range c.PathMappings {
		table.Rules = append(table.Rules, routing.Rule{
			Pattern: mapping.PathPattern,
			Server:  mapping.Server.spec(),
		})
	}
	if c.DefaultServer != nil {
		table.Default = c.DefaultServer.spec()
	}
	return table
}

func (s Server) spec() routing.ServerSpec {
	return routing.ServerSpec{
		Name:        s.Name,
		Command:     s.Command,
		Args:        s.Args,
		Env:         s.Env,
		Description: s.Description,
	}
}
