package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tstw/storyframe/internal/config"
)

// New builds the process logger. Without a log file it is a stock
// production logger on stderr; with one, JSON lines go through a
// size-capped rotating file so long watch sessions cannot fill the disk.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := ParseLevel(cfg.Level)

	if cfg.File == "" {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		return zcfg.Build()
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		level,
	)
	return zap.New(core), nil
}

// ParseLevel maps a level string to a zap level, falling back to info
// for anything unrecognized rather than failing startup.
func ParseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
