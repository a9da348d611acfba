// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and sink of the process logger.
type Config struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	// Output is a file path, "stdout" or "stderr". The terminal display owns
	// the screen, so it is usually pointed at a file when that backend is used.
	Output string `yaml:"output"`
}

// ParseLevel maps a config level string to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zap.InfoLevel, nil
	case "debug":
		return zap.DebugLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("logging: unknown level %q", s)
	}
}

// NewZapConfig returns the console config used by New.
func NewZapConfig(cfg Config) (zap.Config, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, err
	}
	out := strings.TrimSpace(cfg.Output)
	if out == "" {
		out = "stderr"
	}
	zc := zap.Config{
		Level:       zap.NewAtomicLevelAt(lvl),
		Development: cfg.Development,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: !cfg.Development,
		OutputPaths:       []string{out},
		ErrorOutputPaths:  []string{"stderr"},
	}
	if cfg.Development {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zc, nil
}

// New builds a named sugared logger from cfg.
func New(cfg Config, name string) (*zap.SugaredLogger, error) {
	zc, err := NewZapConfig(cfg)
	if err != nil {
		return nil, err
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return l.Sugar().Named(name), nil
}
