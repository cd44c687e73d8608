package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a sugared zap logger to scrollspy.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// newLogger writes console-encoded entries to path at the given level.
// An empty path discards everything. The returned func flushes the log.
func newLogger(path, level string) (*zapLogger, func(), error) {
	if path == "" {
		return &zapLogger{s: zap.NewNop().Sugar()}, func() {}, nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	s := l.Sugar()
	return &zapLogger{s: s}, func() { _ = s.Sync() }, nil
}

func (l *zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
