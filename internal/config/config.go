// Package config holds the language server settings sent by the client in
// initializationOptions.
package config

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	PlatformStandard = "standard"
	PlatformRoblox   = "roblox"
)

type Config struct {
	Platform          string   `json:"platform"`
	Sourcemap         string   `json:"sourcemap"`
	Root              string   `json:"root"`
	IgnoreDirectories []string `json:"ignore_directories"`
}

var defaultConfig = Config{
	Platform:          PlatformStandard,
	Sourcemap:         "sourcemap.json",
	IgnoreDirectories: []string{".git", "node_modules", "Packages", "DevPackages"},
}

// Default returns a copy of the default settings.
func Default() Config {
	cfg := defaultConfig
	cfg.IgnoreDirectories = append([]string(nil), defaultConfig.IgnoreDirectories...)
	return cfg
}

// Load overlays v, typically the decoded initializationOptions, onto the
// defaults. Only fields present in v are replaced.
func Load(v any) (Config, error) {
	cfg := Default()
	if v == nil {
		return cfg, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFromJSON reads JSON from r into a Config.
func LoadFromJSON(r io.Reader) (Config, error) {
	cfg := Default()
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Platform {
	case PlatformStandard, PlatformRoblox:
		return nil
	}
	return fmt.Errorf("unknown platform %q (want %q or %q)", c.Platform, PlatformStandard, PlatformRoblox)
}

// Ignored reports whether a directory with this base name is skipped when
// scanning the workspace.
func (c Config) Ignored(name string) bool {
	for _, dir := range c.IgnoreDirectories {
		if dir == name {
			return true
		}
	}
	return false
}
