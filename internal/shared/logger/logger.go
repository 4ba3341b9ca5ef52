package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "Jan 02 15:04:05"

// Options controls where log lines go.
type Options struct {
	Debug  bool
	Silent bool   // no console output
	File   string // append log lines to this file when non-empty
}

var (
	mu      sync.RWMutex
	current = zap.NewNop()
	logFile *os.File
)

// Init sets up console logging. Debug lines are dropped unless debug is true.
func Init(debug bool) {
	_ = Configure(Options{Debug: debug})
}

// Configure rebuilds the global logger. A log file that cannot be opened is
// reported in the returned error, console logging is still configured.
func Configure(opts Options) error {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Debug {
		level.SetLevel(zap.DebugLevel)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core
	if !opts.Silent {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level))
	}

	var fileErr error
	var file *os.File
	if opts.File != "" {
		file, fileErr = openLogFile(opts.File)
		if fileErr == nil {
			cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(file), level))
		}
	}

	next := zap.New(zapcore.NewTee(cores...))

	mu.Lock()
	prev := current
	prevFile := logFile
	current = next
	logFile = file
	mu.Unlock()

	_ = prev.Sync()
	if prevFile != nil {
		_ = prevFile.Close()
	}

	if fileErr != nil {
		next.Warn("Log file disabled", zap.String("path", opts.File), zap.Error(fileErr))
	}
	return fileErr
}

func openLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("log directory %s does not exist", dir)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// L returns the current logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}
