// Package log builds the zap loggers used by the sync tools.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/esgf/solrsync/common/types"
)

const (
	// ConsoleEncoder writes human readable lines.
	ConsoleEncoder = "console"
	// JSONEncoder writes one json object per line.
	JSONEncoder = "json"
)

// where logs go by default.
var logWriter io.Writer = os.Stderr

// Encoder returns the zap encoder for the given name.
func Encoder(name string) (zapcore.Encoder, error) {
	switch name {
	case "", ConsoleEncoder:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewConsoleEncoder(cfg), nil
	case JSONEncoder:
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg), nil
	}
	return nil, fmt.Errorf("unknown log encoder %q", name)
}

// NewWithLevel creates a named logger with a fixed level and with a set of (optional) hooks.
func NewWithLevel(module string,
	level zap.AtomicLevel,
	encoder zapcore.Encoder,
	hooks ...func(zapcore.Entry) error,
) *zap.Logger {
	return NewWithWriter(logWriter, module, level, encoder, hooks...)
}

// NewWithWriter is NewWithLevel writing to w.
func NewWithWriter(w io.Writer,
	module string,
	level zap.AtomicLevel,
	encoder zapcore.Encoder,
	hooks ...func(zapcore.Entry) error,
) *zap.Logger {
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(zapcore.RegisterHooks(core, hooks...)).Named(module)
}

// Level parses a level name, falling back to info for an empty string.
func Level(name string) (zap.AtomicLevel, error) {
	if name == "" {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
	}
	lvl, err := zap.ParseAtomicLevel(name)
	if err != nil {
		return lvl, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return lvl, nil
}

// Core is the name of a record collection.
func Core(name string) zap.Field {
	return zap.String("core", name)
}

// Window logs a time window.
func Window(w types.TimeWindow) zap.Field {
	return zap.Object("window", w)
}

// Signature logs a signature under the given key.
func Signature(key string, s types.Signature) zap.Field {
	return zap.Object(key, s)
}

// Query logs the core, filter and window of q.
func Query(q types.Query) zap.Field {
	return zap.Object("query", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("core", q.Core)
		enc.AddString("filter", q.Filter)
		return enc.AddObject("window", q.Window)
	}))
}
