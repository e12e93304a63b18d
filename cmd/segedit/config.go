package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config holds the demonstration CLI's settings, loadable from a JSONC
// file (comments and trailing commas allowed) via --config.
//
// Grounded on the teacher's config.go: hujson.Standardize before
// json.Unmarshal, flags layered on top of whatever the file sets.
type Config struct {
	OutputPath    string `json:"outputPath"`
	CheckpointDir string `json:"checkpointDir"`
	Overwrite     bool   `json:"overwrite"`
}

func loadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI flag
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	std, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := json.Unmarshal(std, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}
