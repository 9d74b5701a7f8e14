package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)

	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})

	Sync() error
}

type loggerImpl struct {
	base    *zap.Logger
	sugared *zap.SugaredLogger
}

// New builds a console-only logger.
func New(level string, pretty bool) Logger {
	core := consoleCore(level, pretty)
	base := zap.New(core, zap.AddStacktrace(zapcore.FatalLevel))
	return &loggerImpl{base: base, sugared: base.Sugar()}
}

// NewWithFiles builds a logger that tees the console output into two
// date-stamped files under logDir: a full log at debug level and an
// errors-only log.
func NewWithFiles(level, logDir string, pretty bool) (Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	day := time.Now().Format("20060102")
	full, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("zocdoc_scraper_%s.log", day)),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	errFile, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("zocdoc_errors_%s.log", day)),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening error log file: %w", err)
	}

	fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewTee(
		consoleCore(level, pretty),
		zapcore.NewCore(fileEnc, zapcore.AddSync(full), zapcore.DebugLevel),
		zapcore.NewCore(fileEnc, zapcore.AddSync(errFile), zapcore.ErrorLevel),
	)
	base := zap.New(core, zap.AddStacktrace(zapcore.FatalLevel))
	return &loggerImpl{base: base, sugared: base.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	base := zap.NewNop()
	return &loggerImpl{base: base, sugared: base.Sugar()}
}

func consoleCore(level string, pretty bool) zapcore.Core {
	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if pretty {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	return zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), parseLevel(level))
}

func parseLevel(lvl string) zapcore.Level {
	switch lvl {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, fields ...zap.Field) { l.base.Debug(msg, fields...) }
func (l *loggerImpl) Info(msg string, fields ...zap.Field)  { l.base.Info(msg, fields...) }
func (l *loggerImpl) Warn(msg string, fields ...zap.Field)  { l.base.Warn(msg, fields...) }
func (l *loggerImpl) Error(msg string, fields ...zap.Field) { l.base.Error(msg, fields...) }
func (l *loggerImpl) Fatal(msg string, fields ...zap.Field) { l.base.Fatal(msg, fields...) }

func (l *loggerImpl) Debugf(template string, args ...interface{}) { l.sugared.Debugf(template, args...) }
func (l *loggerImpl) Infof(template string, args ...interface{})  { l.sugared.Infof(template, args...) }
func (l *loggerImpl) Warnf(template string, args ...interface{})  { l.sugared.Warnf(template, args...) }
func (l *loggerImpl) Errorf(template string, args ...interface{}) { l.sugared.Errorf(template, args...) }

func (l *loggerImpl) Sync() error { return l.base.Sync() }

// Field helpers so callers don't import zap directly.
func String(key, val string) zap.Field          { return zap.String(key, val) }
func Int(key string, val int) zap.Field         { return zap.Int(key, val) }
func Err(err error) zap.Field                   { return zap.Error(err) }
func Duration(key string, d time.Duration) zap.Field { return zap.Duration(key, d) }
