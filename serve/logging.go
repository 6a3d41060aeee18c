package serve

import (
	"github.com/advdv/caffe"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: JSON output at the configured level with ISO8601 timestamps.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logs, err := cfg.Build(zap.Fields(zap.String("service", env.serviceName())))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}

	return logs, nil
}

// NewDispatcherLogger adapts the process logger for the dispatcher's failure reports.
func NewDispatcherLogger(logs *zap.Logger) caffe.Logger {
	return caffe.NewZapLogger(logs)
}
