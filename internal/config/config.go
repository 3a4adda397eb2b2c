/*
Package config handles loading and saving gift-hub configuration.

Configuration is stored in ~/.gift-hub.json. Missing fields keep their
defaults, so a partial file is valid.

Schema:
  {
    "catalog":  {"path": "", "database": "~/.gift-hub/catalog.db", "snapshot": true},
    "encoder":  {"kind": "hash", "dimensions": 384, "modelPath": "", "tokenizerPath": "",
                 "runtimeLibrary": "", "maxSeqLen": 128},
    "ranking":  {"poolSize": 15, "mode": "semantic", "semanticWeight": 0.7, "keywordWeight": 0.3},
    "bundle":   {"anchorRatio": 0.7, "fillerCeiling": 20},
    "settings": {"maxConcurrent": 8, "metricsAddr": "", "historyEnabled": true,
                 "historyRetentionDays": 30}
  }
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ranking modes.
const (
	ModeSemantic = "semantic"
	ModeHybrid   = "hybrid"
)

// Config represents the root configuration structure.
type Config struct {
	Catalog  *CatalogConfig `json:"catalog"`
	Encoder  *EncoderConfig `json:"encoder"`
	Ranking  *RankingConfig `json:"ranking"`
	Bundle   *BundleConfig  `json:"bundle"`
	Settings *Settings      `json:"settings"`
}

// CatalogConfig says where items come from and where snapshots live.
type CatalogConfig struct {
	// Path is a YAML or JSON catalog file. Empty uses the built-in seed.
	Path string `json:"path,omitempty"`

	// Database is the SQLite file for snapshots and history.
	Database string `json:"database,omitempty"`

	// Snapshot enables persisting embedded catalogs between runs.
	Snapshot bool `json:"snapshot"`
}

// EncoderConfig selects the text encoder.
type EncoderConfig struct {
	// Kind is "hash" or "onnx".
	Kind string `json:"kind"`

	Dimensions     int    `json:"dimensions,omitempty"`
	ModelPath      string `json:"modelPath,omitempty"`
	TokenizerPath  string `json:"tokenizerPath,omitempty"`
	RuntimeLibrary string `json:"runtimeLibrary,omitempty"`
	MaxSeqLen      int    `json:"maxSeqLen,omitempty"`
}

// RankingConfig controls candidate retrieval.
type RankingConfig struct {
	PoolSize       int     `json:"poolSize"`
	Mode           string  `json:"mode"`
	SemanticWeight float64 `json:"semanticWeight"`
	KeywordWeight  float64 `json:"keywordWeight"`
}

// BundleConfig holds the selector thresholds.
type BundleConfig struct {
	// AnchorRatio is the share of the budget the anchor may cost.
	AnchorRatio float64 `json:"anchorRatio"`

	// FillerCeiling is the maximum filler price.
	FillerCeiling float64 `json:"fillerCeiling"`
}

// Settings contains global configuration options.
type Settings struct {
	// MaxConcurrent bounds in-flight MCP requests.
	MaxConcurrent int `json:"maxConcurrent"`

	// MetricsAddr enables a Prometheus endpoint when set (e.g. ":9090").
	MetricsAddr string `json:"metricsAddr,omitempty"`

	HistoryEnabled       bool `json:"historyEnabled"`
	HistoryRetentionDays int  `json:"historyRetentionDays"`
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Catalog: &CatalogConfig{
			Database: "~/.gift-hub/catalog.db",
			Snapshot: true,
		},
		Encoder: &EncoderConfig{
			Kind:       "hash",
			Dimensions: 384,
			MaxSeqLen:  128,
		},
		Ranking: &RankingConfig{
			PoolSize:       15,
			Mode:           ModeSemantic,
			SemanticWeight: 0.7,
			KeywordWeight:  0.3,
		},
		Bundle: &BundleConfig{
			AnchorRatio:   0.7,
			FillerCeiling: 20,
		},
		Settings: &Settings{
			MaxConcurrent:        8,
			HistoryEnabled:       true,
			HistoryRetentionDays: 30,
		},
	}
}

// fillDefaults replaces sections an input file set to null.
func (c *Config) fillDefaults() {
	def := NewConfig()
	if c.Catalog == nil {
		c.Catalog = def.Catalog
	}
	if c.Encoder == nil {
		c.Encoder = def.Encoder
	}
	if c.Ranking == nil {
		c.Ranking = def.Ranking
	}
	if c.Bundle == nil {
		c.Bundle = def.Bundle
	}
	if c.Settings == nil {
		c.Settings = def.Settings
	}
}

// GetDefaultConfigPath returns the path to ~/.gift-hub.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".gift-hub.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrDefault reads path, or returns defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		if _, ok := err.(*ConfigNotFoundError); ok {
			return NewConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// ExpandPath resolves a leading "~/" against the home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
