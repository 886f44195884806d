// Package cliutil holds the bits of plumbing shared by sirc, spvdis, and
// spvup that don't belong in the library packages: logger construction and
// the verbose/quiet flag wiring cobra hands back to it.
package cliutil

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the zap logger the CLIs pass into the library's optional
// *zap.Logger hooks. levelName is one of debug/info/warn/error; an
// unrecognized name falls back to info rather than failing a compile run
// over a logging typo.
func NewLogger(levelName string, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	} else if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
