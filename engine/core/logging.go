package core

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Ignite 🔥 ",
			})
			l.SetLevel(log.DebugLevel)
			// the LogX helpers add one frame on top of the caller
			l.SetCallerOffset(1)
			singleton = &logger{l}
		})
	return singleton
}

// ConfigureLogging applies the logging section of the configuration to the
// shared logger. The run identifier is appended to the prefix so that
// interleaved output of several runs can be told apart.
func ConfigureLogging(cfg LoggingConfig, runID RunID) {
	configureLogging(os.Stderr, cfg, runID)
}

func configureLogging(w io.Writer, cfg LoggingConfig, runID RunID) {
	l := getLogger()
	l.SetOutput(w)
	l.SetLevel(ParseLogLevel(cfg.Level))
	l.SetReportCaller(cfg.ReportCaller)
	if runID != "" {
		l.SetPrefix("Ignite 🔥 [" + runID.Short() + "]")
	}
}

// ParseLogLevel maps a configuration string to a log level, defaulting to info.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Logger exposes the underlying structured logger for key/value logging.
func Logger() *log.Logger {
	return getLogger().Logger
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
