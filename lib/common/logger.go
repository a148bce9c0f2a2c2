package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/rs/zerolog"
)

// Names of the loggers used by the library packages
const (
	LoggerStore = "store"
	LoggerHost  = "host"
	LoggerPrefs = "prefs"
	LoggerCLI   = "cli"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// prefsLogger implements the ILogger interface on top of a zerolog logger.
// Levels are filtered here, zerolog itself logs everything it receives.
type prefsLogger struct {
	mu     sync.RWMutex
	name   string
	level  logger.LogLevel
	logger zerolog.Logger
}

func (l *prefsLogger) SetLevel(level logger.LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *prefsLogger) enabled(level logger.LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level >= level
}

func (l *prefsLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.logger.Debug().Msgf(format, args...)
	}
}

func (l *prefsLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.logger.Info().Msgf(format, args...)
	}
}

func (l *prefsLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.logger.Warn().Msgf(format, args...)
	}
}

func (l *prefsLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.logger.Error().Msgf(format, args...)
	}
}

func (l *prefsLogger) Panicf(format string, args ...interface{}) {
	if l.enabled(logger.CRITICAL) {
		panic(fmt.Sprintf(format, args...))
	}
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	outputMu sync.RWMutex
	output   io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
)

// SetLogOutput replaces the writer used by loggers created afterwards.
// Mostly useful in tests and for the --log-format json flag of the CLI.
func SetLogOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// CreateLogger implements dragonboats logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	outputMu.RLock()
	w := output
	outputMu.RUnlock()

	return &prefsLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: zerolog.New(w).With().Timestamp().Str("component", pkgName).Logger(),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

var factoryOnce sync.Once

// InitLoggers installs the zerolog backed factory and sets the level of all library loggers
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	for _, name := range []string{LoggerStore, LoggerHost, LoggerPrefs, LoggerCLI} {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
