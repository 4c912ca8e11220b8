package cli

import "go.uber.org/zap"

// debugLogger wraps zap for verbose debug with session context.
type debugLogger struct {
	base      *zap.Logger
	sugared   *zap.SugaredLogger
	sessionFn func() string
}

func newDebugLogger(globals *Globals, sessionFn func() string) *debugLogger {
	if globals == nil || !globals.Verbose {
		return &debugLogger{base: zap.NewNop()}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	logger, err := cfg.Build()
	if err != nil {
		return &debugLogger{base: zap.NewNop()}
	}
	return &debugLogger{
		base:      logger,
		sugared:   logger.Sugar(),
		sessionFn: sessionFn,
	}
}

// Zap returns the logger handed to the session controller
func (l *debugLogger) Zap() *zap.Logger {
	return l.base
}

func (l *debugLogger) Debug(format string, args ...interface{}) {
	if l.sugared == nil {
		return
	}
	session := ""
	if l.sessionFn != nil {
		session = l.sessionFn()
	}
	l.sugared.With("session_id", session).Debugf(format, args...)
}

func (l *debugLogger) Sync() {
	_ = l.base.Sync()
}
