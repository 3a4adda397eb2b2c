// Package logging builds the process logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger writing to stderr. stdout is left free for the
// stdio transport. debug lowers the level to Debug.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return NewAt(zapcore.DebugLevel)
	}
	return NewAt(zapcore.InfoLevel)
}

// NewAt returns the stderr JSON logger at a fixed level. One-shot CLI
// commands use Warn so results are not buried in progress logs.
func NewAt(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(level)
	if level == zapcore.DebugLevel {
		cfg.Development = true
	}
	return cfg.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
