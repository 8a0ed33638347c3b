package config

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Log struct {
	Level  string   `yaml:"level"`
	Format string   `yaml:"format"` // "text" or "json"
	File   *LogFile `yaml:"file"`   // Optional, logs go to stderr as well
}

type LogFile struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"` // Megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // Days
	Compress   bool   `yaml:"compress"`
}

// Configure applies level, format and output to logger. The returned closer
// flushes the log file, if any.
func (l *Log) Configure(logger *log.Logger) (io.Closer, error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level: %w", err)
	}

	logger.SetLevel(level)

	switch l.Format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log.format %q", l.Format)
	}

	if l.File == nil || l.File.Path == "" {
		logger.SetOutput(os.Stderr)
		return noFile{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   l.File.Path,
		MaxSize:    l.File.MaxSize,
		MaxBackups: l.File.MaxBackups,
		MaxAge:     l.File.MaxAge,
		Compress:   l.File.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, file))

	return file, nil
}

type noFile struct{}

func (noFile) Close() error { return nil }
