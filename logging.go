package redis

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger wraps a zap.SugaredLogger the way packetd's logger package does:
// a small set of level methods, a package-level default, and a
// constructor for callers who want their own sink/level. Channel faults,
// cluster topology refreshes, rebuild events and non-fatal lock losses all
// go through this instead of being dropped silently.
type logger struct {
	s *zap.SugaredLogger
}

// LogOptions configures New, mirroring the corpus's Stdout/Level-style
// logger options struct.
type LogOptions struct {
	Level  string // "debug", "info", "warn", "error"; defaults to "info"
	Stdout bool   // true writes to stdout instead of stderr
}

func New(opt LogOptions) *logger {
	level := toZapLevel(opt.Level)
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	sink := zapcore.Lock(os.Stderr)
	if opt.Stdout {
		sink = zapcore.Lock(os.Stdout)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, level)
	return &logger{s: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

func toZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *logger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

var std = New(LogOptions{Level: "info"})

// SetLogOptions replaces the package-level default logger used by
// components that were not handed one explicitly (ClientList's rebuild
// loop, ClusterRouter's topology refresh, Subscriber's reconnect loop).
func SetLogOptions(opt LogOptions) { std = New(opt) }

func logDebugf(format string, args ...any) { std.Debugf(format, args...) }
func logInfof(format string, args ...any)  { std.Infof(format, args...) }
func logWarnf(format string, args ...any)  { std.Warnf(format, args...) }
func logErrorf(format string, args ...any) { std.Errorf(format, args...) }
