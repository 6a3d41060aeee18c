// Package example implements example middleware in an outside package.
package example

import (
	"github.com/advdv/caffe"
	"go.uber.org/zap"
)

// valueKey is where the request logger is stored on the context.
const valueKey = "example.logger"

// Middleware provides an example for middleware that adds a request scoped logger to the context.
func Middleware(logs *zap.Logger) caffe.Middleware {
	return func(c *caffe.Context, next caffe.Next) error {
		if err := c.SetValue(valueKey, logs.With(zap.String("method", c.Method()))); err != nil {
			return err
		}

		return next()
	}
}

// Log returns the logger stored by [Middleware], or a no-op logger.
func Log(c *caffe.Context) *zap.Logger {
	if l, ok := caffe.ValueAs[*zap.Logger](c, valueKey); ok {
		return l
	}

	return zap.NewNop()
}
