package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "hybrid ok", mutate: func(c *Config) { c.Ranking.Mode = ModeHybrid }},
		{name: "anchor ratio one", mutate: func(c *Config) { c.Bundle.AnchorRatio = 1 }},
		{name: "zero filler ceiling", mutate: func(c *Config) { c.Bundle.FillerCeiling = 0 }},
		{
			name:    "unknown encoder",
			mutate:  func(c *Config) { c.Encoder.Kind = "word2vec" },
			wantErr: "encoder.kind",
		},
		{
			name:    "onnx without model",
			mutate:  func(c *Config) { c.Encoder.Kind = "onnx" },
			wantErr: "encoder.modelPath",
		},
		{
			name: "onnx complete",
			mutate: func(c *Config) {
				c.Encoder.Kind = "onnx"
				c.Encoder.ModelPath = "model.onnx"
				c.Encoder.TokenizerPath = "tokenizer.json"
			},
		},
		{
			name:    "hash zero dims",
			mutate:  func(c *Config) { c.Encoder.Dimensions = 0 },
			wantErr: "encoder.dimensions",
		},
		{
			name:    "pool size",
			mutate:  func(c *Config) { c.Ranking.PoolSize = -1 },
			wantErr: "ranking.poolSize",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Ranking.Mode = "bm25" },
			wantErr: "ranking.mode",
		},
		{
			name: "hybrid zero weights",
			mutate: func(c *Config) {
				c.Ranking.Mode = ModeHybrid
				c.Ranking.SemanticWeight = 0
				c.Ranking.KeywordWeight = 0
			},
			wantErr: "both be 0",
		},
		{
			name:    "anchor ratio zero",
			mutate:  func(c *Config) { c.Bundle.AnchorRatio = 0 },
			wantErr: "bundle.anchorRatio",
		},
		{
			name:    "anchor ratio above one",
			mutate:  func(c *Config) { c.Bundle.AnchorRatio = 1.5 },
			wantErr: "bundle.anchorRatio",
		},
		{
			name:    "negative filler ceiling",
			mutate:  func(c *Config) { c.Bundle.FillerCeiling = -5 },
			wantErr: "bundle.fillerCeiling",
		},
		{
			name:    "max concurrent",
			mutate:  func(c *Config) { c.Settings.MaxConcurrent = 0 },
			wantErr: "settings.maxConcurrent",
		},
		{
			name:    "missing section",
			mutate:  func(c *Config) { c.Bundle = nil },
			wantErr: "missing section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := NewConfig()
	cfg.Ranking.PoolSize = 0
	cfg.Bundle.AnchorRatio = 2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"ranking.poolSize", "bundle.anchorRatio"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err.Error(), want)
		}
	}
}

func TestValidateFieldErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.Encoder.Kind = "onnx"
	cfg.Ranking.Mode = "bm25"

	err := cfg.Validate()
	var ie *InvalidConfigError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InvalidConfigError, got %T", err)
	}

	got := make(map[string]bool)
	for _, f := range ie.Fields {
		got[f.Field] = true
		if f.Hint() == "" {
			t.Errorf("field %s has no hint", f.Field)
		}
	}
	for _, want := range []string{"encoder.modelPath", "encoder.tokenizerPath", "ranking.mode"} {
		if !got[want] {
			t.Errorf("missing field error for %s, got %v", want, ie.Fields)
		}
	}

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Error("expected field errors to be reachable through errors.As")
	}
	if !strings.Contains(err.Error(), `💡 use "semantic" (default) or "hybrid"`) {
		t.Errorf("error should carry the ranking.mode hint, got:\n%v", err)
	}
}
