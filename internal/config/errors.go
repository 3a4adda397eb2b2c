package config

import (
	"fmt"
	"strings"
)

// PermissionError reports a config file gift-hub cannot read or write.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // shell or UI step that grants access
	Details string
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Details != "" {
		b.WriteString(e.Details + "\n")
	}
	b.WriteString("💡 Fix: " + e.Fix)
	return b.String()
}

// ConfigNotFoundError reports a missing config file. Most commands fall
// back to defaults instead of returning it.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

// FieldError is one out-of-range or inconsistent config value.
type FieldError struct {
	// Field is the dotted JSON key, e.g. "ranking.mode".
	Field   string
	Problem string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Problem
}

// Hint suggests a valid value for the field, or "" when none is known.
func (e *FieldError) Hint() string {
	return fieldHints[e.Field]
}

var fieldHints = map[string]string{
	"encoder.kind":                  `use "hash" (built in, no files needed) or "onnx"`,
	"encoder.dimensions":            "384 matches the default; any positive size works for hash",
	"encoder.modelPath":             "point encoder.modelPath at a sentence-transformer exported to .onnx",
	"encoder.tokenizerPath":         "point encoder.tokenizerPath at the model's tokenizer.json",
	"encoder.maxSeqLen":             "0 uses the default of 128 tokens",
	"ranking.poolSize":              "15 candidates are ranked by default",
	"ranking.mode":                  `use "semantic" (default) or "hybrid" to mix in keyword scores`,
	"ranking.semanticWeight":        "weights are relative; 0.7 and 0.3 are the defaults",
	"ranking.keywordWeight":         "weights are relative; 0.7 and 0.3 are the defaults",
	"bundle.anchorRatio":            "0.7 lets the anchor take at most 70% of the budget",
	"bundle.fillerCeiling":          "20 caps the filler at $20",
	"settings.maxConcurrent":        "8 concurrent MCP requests is the default",
	"settings.historyRetentionDays": "0 keeps history forever",
}

// InvalidConfigError reports a config that cannot be parsed or fails
// validation. Fields holds every validation problem found.
type InvalidConfigError struct {
	Path    string
	Message string
	Fields  []*FieldError
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	var b strings.Builder
	b.WriteString("invalid config")
	if e.Path != "" {
		b.WriteString(": " + e.Path)
	}
	b.WriteString("\n")
	if e.Message != "" {
		b.WriteString(e.Message + "\n")
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "  - %s\n", f.Error())
		if h := f.Hint(); h != "" {
			fmt.Fprintf(&b, "    💡 %s\n", h)
		}
	}
	if e.Hint != "" {
		b.WriteString("💡 " + e.Hint)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Unwrap exposes the field problems to errors.As.
func (e *InvalidConfigError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}
