package diag

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	loggerMu   sync.RWMutex
)

// Logger returns the package logger. It is a no-op logger until SetLogger
// is called, so library consumers pay nothing by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		loggerMu.Lock()
		if logger == nil {
			logger = zap.NewNop()
		}
		loggerMu.Unlock()
	})
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger installs a zap logger for internal diagnostics. Call before any
// context is constructed; later calls affect subsequent emits only.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
	loggerOnce.Do(func() {})
}

// zapSink is the default Sink, mapping severities onto zap levels.
type zapSink struct{}

func (zapSink) Emit(sev Severity, msg string) {
	l := Logger()
	switch sev {
	case Debug:
		l.Debug(msg)
	case Info:
		l.Info(msg)
	case Warn:
		l.Warn(msg)
	case Error:
		l.Error(msg)
	case Panic:
		// A captured fault is reported at error level; the process stays up.
		l.Error(msg, zap.Bool("panic", true))
	}
}
