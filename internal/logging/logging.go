package logging

import (
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New builds the process logger. Development mode switches to the console
// encoder; otherwise output is JSON suitable for log collectors.
func New(level string, development bool) (*zap.Logger, error) {
    var cfg zap.Config
    if development {
        cfg = zap.NewDevelopmentConfig()
    } else {
        cfg = zap.NewProductionConfig()
        cfg.EncoderConfig.TimeKey = "ts"
        cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
    }
    lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
    if err != nil || level == "" {
        lvl = zapcore.InfoLevel
    }
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    return cfg.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
    if l == nil {
        return zap.NewNop()
    }
    return l
}
