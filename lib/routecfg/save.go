// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package routecfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the config as JSON, atomically: the content goes to a
// temporary file in the same directory, is fsynced, and renamed into
// place, so readers never observe a partial config. Parent directories
// are created as needed (the default path's directory may not exist on
// first save).
func Save(path string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary config file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing config: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing config: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming config into place: %w", err)
	}
	return nil
}

// AddMapping appends a rule to the end of the mapping list. Appending
// preserves the precedence of every existing rule — new rules only
// catch paths nothing earlier claimed.
func (c *Config) AddMapping(mapping Mapping) {
	c.PathMappings = append(c.PathMappings, mapping)
}

// RemoveMapping deletes every mapping with the given pattern and
// reports whether any was removed.
func (c *Config) RemoveMapping(pattern string) bool {
	kept := c.PathMappings[:0]
	removed := false
	for _, mapping := range c.PathMappings {
		if mapping.PathPattern == pattern {
			removed = true
			continue
		}
		kept = append(kept, mapping)
	}
	c.PathMappings = kept
	return removed
}
