package hxel

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/async"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	logger.Store(l)

	async.Pending.OnError = func(err error) {
		Logger().Error("deferred work failed", zap.Error(err))
	}
}

// Logger returns the package logger used for diagnostics.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the package logger. A nil logger disables diagnostics.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// warn reports a non-fatal misconfiguration.
func warn(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}
