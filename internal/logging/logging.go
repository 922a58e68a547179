// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB = 5
	maxBackups   = 3
)

// Init routes slog output to a rotating log file so that CLI and TUI
// surfaces stay free of log noise.
func Init(path string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})

	slog.SetDefault(slog.New(handler))
}
