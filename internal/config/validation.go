/*
Package config provides validation for gift-hub configuration.

Validate is shared by the loader's callers, Save and the verify command.
*/
package config

import "fmt"

// Validate checks every section for out-of-range or inconsistent values.
// All problems are reported together in an *InvalidConfigError.
func (c *Config) Validate() error {
	var fields []*FieldError
	add := func(field, format string, args ...interface{}) {
		fields = append(fields, &FieldError{Field: field, Problem: fmt.Sprintf(format, args...)})
	}

	sections := []struct {
		name    string
		missing bool
	}{
		{"catalog", c.Catalog == nil},
		{"encoder", c.Encoder == nil},
		{"ranking", c.Ranking == nil},
		{"bundle", c.Bundle == nil},
		{"settings", c.Settings == nil},
	}
	for _, s := range sections {
		if s.missing {
			add(s.name, "is a missing section")
		}
	}
	if len(fields) > 0 {
		return &InvalidConfigError{Fields: fields}
	}

	switch c.Encoder.Kind {
	case "hash":
		if c.Encoder.Dimensions <= 0 {
			add("encoder.dimensions", "must be > 0, got %d", c.Encoder.Dimensions)
		}
	case "onnx":
		if c.Encoder.ModelPath == "" {
			add("encoder.modelPath", "is required for onnx")
		}
		if c.Encoder.TokenizerPath == "" {
			add("encoder.tokenizerPath", "is required for onnx")
		}
		if c.Encoder.MaxSeqLen < 0 {
			add("encoder.maxSeqLen", "must be >= 0, got %d", c.Encoder.MaxSeqLen)
		}
	default:
		add("encoder.kind", "%q is not one of hash, onnx", c.Encoder.Kind)
	}

	if c.Ranking.PoolSize <= 0 {
		add("ranking.poolSize", "must be > 0, got %d", c.Ranking.PoolSize)
	}
	switch c.Ranking.Mode {
	case ModeSemantic:
	case ModeHybrid:
		if c.Ranking.SemanticWeight < 0 {
			add("ranking.semanticWeight", "must be >= 0, got %g", c.Ranking.SemanticWeight)
		}
		if c.Ranking.KeywordWeight < 0 {
			add("ranking.keywordWeight", "must be >= 0, got %g", c.Ranking.KeywordWeight)
		}
		if c.Ranking.SemanticWeight+c.Ranking.KeywordWeight == 0 {
			add("ranking.semanticWeight", "and ranking.keywordWeight must not both be 0")
		}
	default:
		add("ranking.mode", "%q is not one of semantic, hybrid", c.Ranking.Mode)
	}

	if c.Bundle.AnchorRatio <= 0 || c.Bundle.AnchorRatio > 1 {
		add("bundle.anchorRatio", "must be in (0, 1], got %g", c.Bundle.AnchorRatio)
	}
	if c.Bundle.FillerCeiling < 0 {
		add("bundle.fillerCeiling", "must be >= 0, got %g", c.Bundle.FillerCeiling)
	}

	if c.Settings.MaxConcurrent <= 0 {
		add("settings.maxConcurrent", "must be > 0, got %d", c.Settings.MaxConcurrent)
	}
	if c.Settings.HistoryRetentionDays < 0 {
		add("settings.historyRetentionDays", "must be >= 0, got %d", c.Settings.HistoryRetentionDays)
	}

	if len(fields) == 0 {
		return nil
	}
	return &InvalidConfigError{Fields: fields}
}
