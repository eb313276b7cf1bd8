package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const service = "school-discipline"

type Log struct {
	Base   *zap.Logger
	Closer func()
}

// Init: prod пишет JSON, остальное: консольный dev-вывод. Неизвестный уровень = info.
// release добавляется в каждую запись, чтобы логи сходились с событиями Sentry.
func Init(level, env, release string) (*Log, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(env, "prod") {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil // записи о заблокированных неделях не должны теряться
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": service}
	if release != "" {
		cfg.InitialFields["release"] = release
	}

	base, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	return &Log{Base: base, Closer: func() { _ = base.Sync() }}, nil
}

// Named returns a child logger tagged with component=name.
func (l *Log) Named(name string) *zap.Logger {
	return l.Base.Named(name).With(zap.String("component", name))
}
