package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	base    zerolog.Logger
	ready   bool
	logFile *os.File
)

// InitLogger sends log output to both the console and an append-only file.
// An empty filename logs to the console only.
func InitLogger(filename string, level string) error {
	var w io.Writer = consoleWriter(os.Stdout)
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file %q: %w", filename, err)
		}
		mu.Lock()
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		mu.Unlock()
		w = io.MultiWriter(w, f)
	}
	SetOutput(w, level)
	return nil
}

// SetOutput replaces the logger with one writing to w. Tests use it to
// capture output.
func SetOutput(w io.Writer, level string) {
	l := zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(level))
	mu.Lock()
	base = l
	ready = true
	mu.Unlock()
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Init sets up a console-only logger at info level.
func Init() {
	SetOutput(consoleWriter(os.Stdout), "info")
}

// L returns the structured logger for callers that attach fields.
func L() *zerolog.Logger {
	mu.RLock()
	if ready {
		l := base
		mu.RUnlock()
		return &l
	}
	mu.RUnlock()
	Init()
	return L()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

func Info(format string, v ...interface{}) {
	L().Info().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	Info(format, v...)
}

func Debugf(format string, v ...interface{}) {
	L().Debug().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	L().Error().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	Error(format, v...)
}

func Warn(format string, v ...interface{}) {
	L().Warn().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	Warn(format, v...)
}
