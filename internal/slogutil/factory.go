package slogutil

import (
	"io"
	"log/slog"
	"os"

	"pubapi/internal/config"
	"pubapi/internal/paths"
)

// LoggerFactory builds the CLI logger from flags and configuration. The
// console level comes from the verbosity flags; the log file level comes
// from logging.level.
type LoggerFactory struct {
	repoRoot string
	config   *config.Config
	cliLevel slog.Level
	stderr   io.Writer
	closers  []io.Closer
}

// NewLoggerFactory creates a factory. cliLevel is usually the result of
// LevelFromVerbosity.
func NewLoggerFactory(repoRoot string, cfg *config.Config, cliLevel slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		repoRoot: repoRoot,
		config:   cfg,
		cliLevel: cliLevel,
		stderr:   os.Stderr,
	}
}

// SetConsole redirects console output, for tests.
func (f *LoggerFactory) SetConsole(w io.Writer) {
	f.stderr = w
}

// CLILogger logs to the console and, when logging.file is configured, also
// to that file under .pubapi/logs. A file that cannot be opened is reported
// on the console and skipped.
func (f *LoggerFactory) CLILogger() *slog.Logger {
	cfg := f.config.Logging
	console := NewFormatHandler(f.stderr, cfg.Format, f.cliLevel)
	if cfg.File == "" {
		return slog.New(console)
	}

	fileLogger, err := f.fileLogger()
	if err != nil {
		logger := slog.New(console)
		logger.Warn("Log file disabled", "file", cfg.File, "error", err.Error())
		return logger
	}
	return slog.New(NewTeeHandler(console, fileLogger.Handler()))
}

func (f *LoggerFactory) fileLogger() (*slog.Logger, error) {
	cfg := f.config.Logging
	path := paths.GetLogPath(f.repoRoot, cfg.File)
	logger, closer, err := NewFileLoggerWithRotation(path, cfg.Format, f.fileLevel(), cfg.MaxSize, cfg.MaxBackups)
	if err != nil {
		return nil, err
	}
	f.closers = append(f.closers, closer)
	return logger, nil
}

func (f *LoggerFactory) fileLevel() slog.Level {
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
