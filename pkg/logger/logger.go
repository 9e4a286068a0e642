package logger

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/promptmaster/api/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	Logger *zap.Logger
)

// InitLogger initializes the global zap logger from configuration.
// Development logs JSON at debug level, production logs console-encoded
// entries at info level. When LogsPath is set, entries are also appended
// to info.log and error.log inside that directory.
func InitLogger(cfg *config.Config) error {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	level := zapcore.DebugLevel
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if cfg.IsProduction() {
		level = zapcore.InfoLevel
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	infoSinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	errorSinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}

	if cfg.App.LogsPath != "" {
		if err := os.MkdirAll(cfg.App.LogsPath, 0755); err != nil {
			return err
		}

		infoFile, err := os.OpenFile(filepath.Join(cfg.App.LogsPath, "info.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		errorFile, err := os.OpenFile(filepath.Join(cfg.App.LogsPath, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			infoFile.Close()
			return err
		}

		infoSinks = append(infoSinks, zapcore.AddSync(infoFile))
		errorSinks = append(errorSinks, zapcore.AddSync(errorFile))
	}

	// errors go to the error sinks only; everything below error to the info sinks
	infoCore := zapcore.NewCore(
		encoder,
		zapcore.NewMultiWriteSyncer(infoSinks...),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level && l < zapcore.ErrorLevel }),
	)
	errorCore := zapcore.NewCore(
		encoder,
		zapcore.NewMultiWriteSyncer(errorSinks...),
		zapcore.ErrorLevel,
	)

	SetLogger(zap.New(zapcore.NewTee(infoCore, errorCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("service", cfg.App.Name)))

	return nil
}

// SetLogger replaces the global logger. Tests use it to capture output.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	Logger = l
}

// GetLogger returns the structured logger, or a no-op logger before InitLogger ran
func GetLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}

// Sync syncs all logs (call this before application exits)
func Sync() {
	_ = GetLogger().Sync()
}

// LogPanic logs a recovered panic with its stack
func LogPanic(recovered interface{}, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Any("panic", recovered),
		zap.Stack("stack"),
	}, fields...)

	GetLogger().Error("Panic recovered", allFields...)
}

// LogAuth logs authentication events
func LogAuth(userID, action string, success bool, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("user_id", userID),
		zap.String("action", action),
		zap.Bool("success", success),
	}, fields...)

	if success {
		GetLogger().Info("Authentication success", allFields...)
	} else {
		GetLogger().Warn("Authentication failure", allFields...)
	}
}
