package assets

import (
	rh "github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

type rhZapLogger struct {
	s *zap.SugaredLogger
}

func newRHZapLogger(logger *zap.Logger) rh.LeveledLogger {
	return &rhZapLogger{s: logger.Sugar()}
}

func (l *rhZapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l *rhZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *rhZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l *rhZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}
