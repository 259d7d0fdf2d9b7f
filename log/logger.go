package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

const (
	// default log level
	defaultLogLevel = logrus.InfoLevel

	// log file name
	globalLogFileName = "global.log"
	// default log directory
	logDir = "nodelogs"
	// default log file params
	defaultLogMaxSize    = 100  // maximum file size before rotation, in MB
	defaultLogMaxBackups = 3    // maximum number of old log files to keep
	defaultLogMaxAge     = 28   // maximum number of days to retain old log files
	defaultLogCompress   = true // whether to compress the rotated log files using gzip
)

var (
	// Global is the process logger
	Global *Logger

	// default logfile path
	defaultLogFilePath = filepath.Join(".", logDir, globalLogFileName)
)

func init() {
	Global = createStandardLogger(defaultLogFilePath, defaultLogLevel.String(), true)
}

// SetGlobalLogger moves the global logger to the given file and level. An
// empty file name keeps the default path.
func SetGlobalLogger(logFilename string, logLevel string) {
	if logFilename == "" {
		logFilename = defaultLogFilePath
	}
	Global.SetOutput(io.MultiWriter(newRotation(logFilename), os.Stdout))
	Global.SetLevel(parseLevel(logLevel))
}

// NewLogger creates a component logger writing to its own rotated file.
func NewLogger(logFilename string, logLevel string) *Logger {
	if logFilename == "" {
		logFilename = defaultLogFilePath
	}
	l := createStandardLogger(logFilename, logLevel, false)
	l.WithFields(Fields{
		"path":  logFilename,
		"level": logLevel,
	}).Debug("Component logger started")
	return l
}

// NewDiscardLogger returns a logger that drops everything, for tests.
func NewDiscardLogger() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newRotation(logFilename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilename,
		MaxSize:    defaultLogMaxSize,
		MaxBackups: defaultLogMaxBackups,
		MaxAge:     defaultLogMaxAge,
		Compress:   defaultLogCompress,
	}
}

func parseLevel(logLevel string) logrus.Level {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return defaultLogLevel
	}
	return level
}

func createStandardLogger(logFilename string, logLevel string, stdOut bool) *Logger {
	logger := logrus.New()
	output := newRotation(logFilename)

	if stdOut {
		logger.SetOutput(io.MultiWriter(output, os.Stdout))
	} else {
		logger.SetOutput(output)
	}

	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		PadLevelText:    true,
		FullTimestamp:   true,
		TimestampFormat: "01-02|15:04:05.000",
	})
	logger.SetLevel(parseLevel(logLevel))
	return logger
}

func WithField(key string, val interface{}) *Entry {
	return Global.WithField(key, val)
}

func WithFields(fields Fields) *Entry {
	return Global.WithFields(fields)
}

func Debug(keyvals ...interface{}) {
	Global.Debug(keyvals...)
}

func Debugf(msg string, args ...interface{}) {
	Global.Debugf(msg, args...)
}

func Info(keyvals ...interface{}) {
	Global.Info(keyvals...)
}

func Infof(msg string, args ...interface{}) {
	Global.Infof(msg, args...)
}

func Warn(keyvals ...interface{}) {
	Global.Warn(keyvals...)
}

func Warnf(msg string, args ...interface{}) {
	Global.Warnf(msg, args...)
}

func Error(keyvals ...interface{}) {
	Global.Error(keyvals...)
}

func Errorf(msg string, args ...interface{}) {
	Global.Errorf(msg, args...)
}

func Fatal(keyvals ...interface{}) {
	Global.Fatal(keyvals...)
}

func Fatalf(msg string, args ...interface{}) {
	Global.Fatalf(msg, args...)
}
