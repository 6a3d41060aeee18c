package serve

import (
	"github.com/advdv/caffe"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// loggerKey is the context value key of the request logger.
const loggerKey = "serve.logger"

// WithRequestLogger returns middleware that stores a request scoped logger for [Log]. The logger carries the method
// and path of the request, and its id when [WithRequestID] ran before.
func WithRequestLogger(logs *zap.Logger) caffe.Middleware {
	return func(c *caffe.Context, next caffe.Next) error {
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		}
		if id := RequestID(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		if err := c.SetValue(loggerKey, logs.With(fields...)); err != nil {
			return err
		}

		return next()
	}
}

// Log returns the request logger, correlated with the active trace span. It panics when [WithRequestLogger] did not
// run for the request.
func Log(c *caffe.Context) *zap.Logger {
	logs, ok := caffe.ValueAs[*zap.Logger](c, loggerKey)
	if !ok {
		panic("serve: request logger not found; is the middleware configured?")
	}

	return logs.With(traceFields(c)...)
}

// Span returns the span of the request, or a no-op span when it is not traced.
func Span(c *caffe.Context) trace.Span {
	return trace.SpanFromContext(c)
}

func traceFields(c *caffe.Context) []zap.Field {
	sc := trace.SpanContextFromContext(c)
	if !sc.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
