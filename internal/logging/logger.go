// Package logging provides the structured, PII-scrubbing logger shared by
// every component. Loggers are built explicitly and passed down; nothing here
// touches process-wide state.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
	Named(name string) Logger
	Sync() error
}

type Field = zap.Field

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Name        string
	Level       string
	Format      string
	OutputPaths []string
}

func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = "seo_audit"
	}
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stdout"}
	}
}

type zapLogger struct {
	logger *zap.Logger
}

// New opens every output path (stdout, stderr or a file) and returns a logger
// writing the same redacted records to all of them.
func New(cfg Config) (Logger, error) {
	cfg.SetDefaults()
	ws, _, err := zap.Open(cfg.OutputPaths...)
	if err != nil {
		return nil, fmt.Errorf("open log outputs: %w", err)
	}
	return NewWithSink(cfg, ws), nil
}

func NewWithSink(cfg Config, ws zapcore.WriteSyncer) Logger {
	cfg.SetDefaults()
	core := zapcore.NewCore(newEncoder(cfg.Format), ws, parseLevel(cfg.Level))
	z := zap.New(NewRedactingCore(core, NewRedactor())).Named(cfg.Name)
	return &zapLogger{logger: z}
}

func Must(cfg Config) Logger {
	l, err := New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return l
}

func newEncoder(format string) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if strings.EqualFold(format, FormatJSON) {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.TimeKey, encCfg.LevelKey, encCfg.NameKey = "", "", ""
	encCfg.ConsoleSeparator = " - "
	return textEncoder{zapcore.NewConsoleEncoder(encCfg)}
}

const textTimeLayout = "2006-01-02T15:04:05.000Z0700"

// textEncoder writes "timestamp - logger - LEVEL - message" followed by the
// fields. zap's console encoder puts the level before the name, so the prefix
// is built here and the wrapped encoder only renders message and fields.
type textEncoder struct {
	zapcore.Encoder
}

func (e textEncoder) Clone() zapcore.Encoder {
	return textEncoder{e.Encoder.Clone()}
}

func (e textEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	ent.Message = strings.Join([]string{
		ent.Time.Format(textTimeLayout),
		ent.LoggerName,
		ent.Level.CapitalString(),
		ent.Message,
	}, " - ")
	return e.Encoder.EncodeEntry(ent, fields)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field) { l.logger.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field) { l.logger.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.logger.Fatal(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{logger: l.logger.Named(name)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

func String(key, val string) Field { return zap.String(key, val) }
func Strings(key string, val []string) Field { return zap.Strings(key, val) }
func Int(key string, val int) Field { return zap.Int(key, val) }
func Int64(key string, val int64) Field { return zap.Int64(key, val) }
func Float64(key string, val float64) Field { return zap.Float64(key, val) }
func Bool(key string, val bool) Field { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Error(err error) Field { return zap.Error(err) }
func Any(key string, val any) Field { return zap.Any(key, val) }
