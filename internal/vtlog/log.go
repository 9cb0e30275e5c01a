// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package vtlog provides the structured logger the parser and dispatch
// engine use for parse-failure diagnostics. It wraps log/slog the same way
// the rest of the pack does: a package-level logger, an adjustable level,
// and a TRACE level below slog's Debug for per-character tracing.
package vtlog

import (
	"context"
	"io"
	"os"

	"log/slog"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// Logger is the package default; callers may repoint its output with
// SetOutput or swap the whole instance via CreateLogger for tests.
var Logger *VTLogger

type VTLogger struct {
	*slog.Logger
	addSource bool
	level     *slog.LevelVar
}

func init() {
	Logger = new(VTLogger)
	Logger.level = new(slog.LevelVar)
	Logger.SetLevel(slog.LevelWarn)
	Logger.SetOutput(os.Stderr)
}

func (l *VTLogger) SetLevel(v slog.Level) { l.level.Set(v) }

func (l *VTLogger) AddSource(add bool) { l.addSource = add }

func (l *VTLogger) replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		label, ok := levelNames[level]
		if !ok {
			label = level.String()
		}
		a.Value = slog.StringValue(label)
	}
	return a
}

func (l *VTLogger) SetOutput(w io.Writer) {
	ho := &slog.HandlerOptions{
		AddSource:   l.addSource,
		Level:       l.level,
		ReplaceAttr: l.replaceLevelName,
	}
	l.Logger = slog.New(slog.NewTextHandler(w, ho))
}

// CreateLogger builds a fresh logger writing to w at the given level,
// without touching the package default's level var. Tests use this to
// capture output deterministically.
func (l *VTLogger) CreateLogger(w io.Writer, source bool, level slog.Level) {
	lv := new(slog.LevelVar)
	lv.Set(level)
	ho := &slog.HandlerOptions{
		AddSource:   source,
		Level:       lv,
		ReplaceAttr: l.replaceLevelName,
	}
	l.Logger = slog.New(slog.NewTextHandler(w, ho))
	l.level = lv
}

func (l *VTLogger) Trace(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelTrace, msg, args...)
}
