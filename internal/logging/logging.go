package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/errors"
)

// New builds a JSON logger writing to stderr at the given level.
// "debug" switches to the human-readable development encoder.
// Stdout is left alone: it carries CLI output and the MCP stdio stream.
func New(level string) (*zap.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if level == "debug" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// Failure logs an error returned by an operation. Internal errors are logged
// at error level with their underlying cause; user errors at debug.
func Failure(logger *zap.Logger, action string, err error) {
	if err == nil {
		return
	}
	tErr, ok := err.(*errors.TomeError)
	if !ok {
		logger.Error(action+" failed", zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.String("code", string(tErr.Code)),
		zap.String("message", tErr.Message),
	}
	if tErr.Code != errors.ErrInternal {
		logger.Debug(action+" rejected", fields...)
		return
	}
	if cause := tErr.Cause(); cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	logger.Error(action+" failed", fields...)
}
