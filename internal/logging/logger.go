package logging

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	NameDefault      = "default"
	NameWorkflow     = "workflow"
	NameRegistry     = "registry"
	NameStore        = "store"
	NameAPI          = "api"
	NameInspection   = "inspection"
	NameNotification = "notification"
	NameLive         = "live"

	FieldCategory = "category"
)

// Options controls where and how verbosely the process logs.
type Options struct {
	Dir        string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Production bool
}

var (
	mu      sync.RWMutex
	logger  *zap.Logger
	once    sync.Once
	options = Options{Dir: "logs", Level: "info", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 28, Compress: true}
)

// Configure replaces the options used to build the process logger. It only
// has an effect before the first logger is handed out.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	options = opts
}

func getLogger() *zap.Logger {
	once.Do(initLogger)
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Get returns the default named logger.
func Get() *zap.Logger {
	return getLogger().Named(NameDefault)
}

// Named returns a child logger for a component, optionally tagged with fields.
func Named(name string, fields ...zap.Field) *zap.Logger {
	return getLogger().Named(name).With(fields...)
}

// Category is a shorthand for Named(name, zap.String(FieldCategory, category)).
func Category(name, category string) *zap.Logger {
	return Named(name, zap.String(FieldCategory, category))
}

func initLogger() {
	mu.Lock()
	defer mu.Unlock()

	opts := options
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if err := os.MkdirAll(opts.Dir, os.ModePerm); err != nil {
		log.Fatalf("Error find/create logs directory: %v", err)
	}

	level := zap.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			log.Printf("unknown log level %q, using info", opts.Level)
			level = zap.InfoLevel
		}
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "wartungd.log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(logFile), level)

	if opts.Production {
		logger = zap.New(fileCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
		return
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	logger = zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Sync flushes buffered log entries.
func Sync() error {
	if err := getLogger().Sync(); err != nil {
		return fmt.Errorf("sync logger: %w", err)
	}
	return nil
}

// SetCapture routes all logging into buf as JSON lines. Tests only.
func SetCapture(buf *bytes.Buffer, level zapcore.Level) {
	once.Do(func() {})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(buf), level)

	mu.Lock()
	logger = zap.New(core)
	mu.Unlock()
}

// SetNop silences all logging. Tests only.
func SetNop() {
	once.Do(func() {})

	mu.Lock()
	logger = zap.NewNop()
	mu.Unlock()
}
