package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/olgasafonova/commons-mcp-server/internal/config"
)

// nopCloser is returned when logs go to stderr
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the slog logger described by cfg. Logs go to stderr
// unless a file is configured, in which case they are rotated by lumberjack.
// stdout is never used: it carries the MCP stream.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var out io.Writer = stderr
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
			return nil, nil, err
		}

		maxSize := cfg.MaxSize
		if maxSize == 0 {
			maxSize = 10 // MB
		}
		maxFiles := cfg.MaxFiles
		if maxFiles == 0 {
			maxFiles = 5
		}

		rotatingWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxFiles,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = rotatingWriter
		closer = rotatingWriter
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
