// cmd/versionmask/config.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/gagin/versionmask/internal/cleanup"
)

// Config holds the settings read from config.toml.
type Config struct {
	ExtraDenylist   []string `toml:"extra_denylist"`
	ExcludeDirs     []string `toml:"exclude_dirs"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	UseGitignore    *bool    `toml:"use_gitignore"`
	Workers         *int     `toml:"workers"`
	VersionsFile    *string  `toml:"versions_file"`
}

var defaultConfig = Config{
	ExtraDenylist:   []string{},
	ExcludeDirs:     []string{},
	ExcludePatterns: []string{},
	UseGitignore:    func(b bool) *bool { return &b }(false),
	Workers:         func(n int) *int { return &n }(0),
	VersionsFile:    func(s string) *string { return &s }(cleanup.DefaultVersionsFile),
}

// defaultConfigPath is ~/.config/versionmask/config.toml.
func defaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "versionmask", "config.toml"), nil
}

// loadConfig reads customConfigPath, or the default location when it is empty. A
// missing default file yields the defaults; a missing custom file is an error.
func loadConfig(customConfigPath string) (Config, error) {
	cfg := defaultConfig
	isCustomPath := customConfigPath != ""

	var configFile string
	if isCustomPath {
		abs, err := filepath.Abs(customConfigPath)
		if err != nil {
			return defaultConfig, fmt.Errorf("invalid custom config path '%s': %w", customConfigPath, err)
		}
		configFile = abs
		slog.Debug("Attempting to load configuration from custom path.", "path", configFile)
	} else {
		p, err := defaultConfigPath()
		if err != nil {
			slog.Warn("Could not determine user home directory. Using default settings only.", "error", err)
			return cfg, nil
		}
		configFile = p
		slog.Debug("Attempting to load configuration from default path.", "path", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if isCustomPath {
				return defaultConfig, fmt.Errorf("specified configuration file '%s' not found", configFile)
			}
			slog.Debug("No default config file found, using default settings.", "path", configFile)
			return cfg, nil
		}
		return defaultConfig, fmt.Errorf("error reading config file '%s': %w", configFile, err)
	}
	if len(content) == 0 {
		slog.Info("Configuration file is empty, using default settings.", "path", configFile)
		return cfg, nil
	}

	// Decode into a zero value; decoding through the shared default pointers would
	// overwrite the defaults themselves.
	var loadedCfg Config
	meta, err := toml.Decode(string(content), &loadedCfg)
	if err != nil {
		return defaultConfig, fmt.Errorf("error decoding TOML from '%s': %w", configFile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		slog.Warn("Unrecognized keys found in config file.", "path", configFile, "keys", undecoded)
	}
	cfg = loadedCfg

	if cfg.UseGitignore == nil {
		cfg.UseGitignore = defaultConfig.UseGitignore
	}
	if cfg.Workers == nil {
		cfg.Workers = defaultConfig.Workers
	}
	if cfg.VersionsFile == nil || *cfg.VersionsFile == "" {
		cfg.VersionsFile = defaultConfig.VersionsFile
	}

	slog.Info("Loaded configuration.", "path", configFile)
	slog.Debug("Configuration values.",
		"extra_denylist", cfg.ExtraDenylist,
		"exclude_dirs", cfg.ExcludeDirs,
		"exclude_patterns", cfg.ExcludePatterns,
		"use_gitignore", *cfg.UseGitignore,
		"workers", *cfg.Workers,
		"versions_file", *cfg.VersionsFile,
	)
	return cfg, nil
}
