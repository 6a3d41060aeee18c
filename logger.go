package caffe

import (
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledError(err error)
	LogNonErrorFailure(err error)
	LogBodyAfterHeadersSent(method, path string)
	LogResponseWriteError(err error)
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogUnhandledError(err error) {
	l.Logger.Error("unhandled error",
		zap.Error(err),
		zap.Int("code", int(CodeOf(err))),
		zap.String("trace", fmt.Sprintf("%+v", err)))
}

func (l zapLogger) LogNonErrorFailure(err error) {
	l.Logger.Error("non-error failure", zap.Error(err), zap.String("trace", fmt.Sprintf("%+v", err)))
}

func (l zapLogger) LogBodyAfterHeadersSent(method, path string) {
	l.Logger.Warn("body set after headers were sent", zap.String("method", method), zap.String("path", path))
}

func (l zapLogger) LogResponseWriteError(err error) {
	l.Logger.Error("error while writing response", zap.Error(err))
}

// NewZapLogger adapts a zap logger to the [Logger] interface.
func NewZapLogger(l *zap.Logger) Logger {
	return zapLogger{l.Named("caffe")}
}

// defaultLogger is used when no logger is configured on the dispatcher.
func defaultLogger() Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return NewZapLogger(zap.NewNop())
	}

	return NewZapLogger(l)
}

type TestLogger struct {
	tb testing.TB

	NumLogUnhandledError       int64
	NumLogNonErrorFailure      int64
	NumLogBodyAfterHeadersSent int64
	NumLogResponseWriteError   int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledError, 1)
	l.tb.Logf("caffe: unhandled error: %+v", err)
}

func (l *TestLogger) LogNonErrorFailure(err error) {
	atomic.AddInt64(&l.NumLogNonErrorFailure, 1)
	l.tb.Logf("caffe: non-error failure: %s", err)
}

func (l *TestLogger) LogBodyAfterHeadersSent(method, path string) {
	atomic.AddInt64(&l.NumLogBodyAfterHeadersSent, 1)
	l.tb.Logf("caffe: body set after headers were sent: %s %s", method, path)
}

func (l *TestLogger) LogResponseWriteError(err error) {
	atomic.AddInt64(&l.NumLogResponseWriteError, 1)
	l.tb.Logf("caffe: error while writing response: %s", err)
}

var _ Logger = &TestLogger{}
