package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields aliases logrus.Fields so callers do not import logrus directly.
type Fields = logrus.Fields

// Log wraps a logrus logger configured for the service.
type Log struct {
	*logrus.Logger
}

var global = newLog()

func newLog() *Log {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetLevel(levelFromEnv())
	return &Log{Logger: l}
}

func levelFromEnv() logrus.Level {
	s := os.Getenv("LOG_LEVEL")
	if s == "" {
		return logrus.InfoLevel
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(s)); err == nil {
		return lvl
	}
	return logrus.InfoLevel
}

// Get returns the process-wide logger.
func Get() *Log {
	return global
}

// Options configures output and level, typically from the loaded config.
type Options struct {
	Level string
	// File enables rotated file output when non-empty; stderr otherwise.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Configure applies Options to the global logger.
func Configure(opts Options) {
	if opts.Level != "" {
		if lvl, err := logrus.ParseLevel(strings.ToLower(opts.Level)); err == nil {
			global.SetLevel(lvl)
		}
	}
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		global.SetOutput(io.MultiWriter(os.Stderr, rotated))
	}
}

// WithComponent tags entries with the originating component.
func (l *Log) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}
