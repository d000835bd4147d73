// Package observability builds the structured logger shared by every
// subsystem and the field sets they use to name rooms.
package observability

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/periphery/internal/config"
)

// JSON output keeps the first sampleFirst copies of a message each second,
// then every sampleThereafter-th, so per-frame lines stay bounded.
const (
	sampleFirst      = 100
	sampleThereafter = 10
)

// NewLogger creates the process logger writing to stderr.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stderr))
}

func newLogger(cfg config.LoggingConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var core zapcore.Core
	switch cfg.Format {
	case "json":
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewSamplerWithOptions(
			zapcore.NewCore(zapcore.NewJSONEncoder(enc), out, level),
			time.Second, sampleFirst, sampleThereafter)
	case "console":
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(enc), out, level)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(out)), nil
}

// Room returns the fields naming a room and its world offset.
func Room(path string, x, z float32) []zap.Field {
	return []zap.Field{
		zap.String("room", path),
		zap.Float32("x", x),
		zap.Float32("z", z),
	}
}
