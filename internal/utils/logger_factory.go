package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	diagnosticTimeKeyConstant            = "ts"
	diagnosticLevelKeyConstant           = "level"
	diagnosticCallerKeyConstant          = "caller"
	diagnosticMessageKeyConstant         = "msg"
	consoleMessageKeyConstant            = "message"
	consoleLevelKeyConstant              = "level"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates the diagnostic logger encodings.
type LogFormat string

// Supported diagnostic log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var zapLevels = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// ParseLogLevel accepts a level name in any letter case.
func ParseLogLevel(value string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(value)))
	if _, supported := zapLevels[level]; !supported {
		return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, value)
	}
	return level, nil
}

// ParseLogFormat accepts a format name in any letter case.
func ParseLogFormat(value string) (LogFormat, error) {
	format := LogFormat(strings.ToLower(strings.TrimSpace(value)))
	switch format {
	case LogFormatStructured, LogFormatConsole:
		return format, nil
	default:
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, value)
	}
}

// LoggerOutputs pairs the diagnostic logger with the console logger used for command events.
// Both write to the factory destination, standard error by default, so reports on standard output
// stay machine readable.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds the loggers for one invocation.
type LoggerFactory struct {
	destination   zapcore.WriteSyncer
	coloredLevels bool
}

// LoggerFactoryOption customizes a LoggerFactory.
type LoggerFactoryOption func(*LoggerFactory)

// WithLogDestination redirects both loggers to destination.
func WithLogDestination(destination io.Writer) LoggerFactoryOption {
	return func(factory *LoggerFactory) {
		if destination != nil {
			factory.destination = zapcore.Lock(zapcore.AddSync(destination))
		}
	}
}

// WithColoredLevels colors console level names, for terminals that render ANSI sequences.
func WithColoredLevels(enabled bool) LoggerFactoryOption {
	return func(factory *LoggerFactory) {
		factory.coloredLevels = enabled
	}
}

// NewLoggerFactory constructs a LoggerFactory writing to standard error.
func NewLoggerFactory(options ...LoggerFactoryOption) *LoggerFactory {
	factory := &LoggerFactory{destination: zapcore.Lock(os.Stderr)}
	for _, option := range options {
		if option != nil {
			option(factory)
		}
	}
	return factory
}

// CreateLoggerOutputs builds the diagnostic logger in the requested format together with a console
// logger that prints the level and message only. Both honor level.
func (factory *LoggerFactory) CreateLoggerOutputs(level LogLevel, format LogFormat) (LoggerOutputs, error) {
	zapLevel, supportedLevel := zapLevels[level]
	if !supportedLevel {
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogLevelTemplateConstant, level)
	}
	enabler := zap.NewAtomicLevelAt(zapLevel)

	diagnosticConfiguration := zapcore.EncoderConfig{
		TimeKey:        diagnosticTimeKeyConstant,
		LevelKey:       diagnosticLevelKeyConstant,
		CallerKey:      diagnosticCallerKeyConstant,
		MessageKey:     diagnosticMessageKeyConstant,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var diagnosticEncoder zapcore.Encoder
	switch format {
	case LogFormatStructured:
		diagnosticEncoder = zapcore.NewJSONEncoder(diagnosticConfiguration)
	case LogFormatConsole:
		diagnosticEncoder = zapcore.NewConsoleEncoder(diagnosticConfiguration)
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, format)
	}

	consoleLevelEncoder := zapcore.CapitalLevelEncoder
	if factory.coloredLevels {
		consoleLevelEncoder = zapcore.CapitalColorLevelEncoder
	}
	consoleConfiguration := zapcore.EncoderConfig{
		MessageKey:     consoleMessageKeyConstant,
		LevelKey:       consoleLevelKeyConstant,
		EncodeLevel:    consoleLevelEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	return LoggerOutputs{
		DiagnosticLogger: zap.New(zapcore.NewCore(diagnosticEncoder, factory.destination, enabler), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)),
		ConsoleLogger:    zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfiguration), factory.destination, enabler)),
	}, nil
}
