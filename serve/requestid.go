package serve

import (
	"github.com/advdv/caffe"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const (
	requestIDKey       = "serve.request_id"
	maxRequestIDLength = 128
)

// WithRequestID returns middleware that assigns every request an id and echoes it in the response. An id sent by
// the client is kept when it is a valid header value of at most 128 bytes, otherwise a random UUID is used.
func WithRequestID() caffe.Middleware {
	return func(c *caffe.Context, next caffe.Next) error {
		id := c.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength || c.Set(RequestIDHeader, id) != nil {
			id = uuid.NewString()
			if err := c.Set(RequestIDHeader, id); err != nil {
				return err
			}
		}

		if err := c.SetValue(requestIDKey, id); err != nil {
			return err
		}

		return next()
	}
}

// RequestID returns the id assigned by [WithRequestID], or "" without it.
func RequestID(c *caffe.Context) string {
	id, _ := caffe.ValueAs[string](c, requestIDKey)
	return id
}
