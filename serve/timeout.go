package serve

import (
	"context"
	"net/http"
	"time"
)

// DefaultDeadlineBuffer is reserved at the end of every request for writing an error response.
const DefaultDeadlineBuffer = 500 * time.Millisecond

// TimeoutConfig bounds how long the server spends on a single request.
type TimeoutConfig struct {
	// RequestTimeout is the longest a request may take, from CAFFE_REQUEST_TIMEOUT.
	RequestTimeout time.Duration

	// DeadlineBuffer is subtracted from RequestTimeout for the per-request deadline. Defaults to
	// DefaultDeadlineBuffer.
	DeadlineBuffer time.Duration
}

// ServerTimeouts returns the http.Server timeouts. Headers get at most five seconds.
func (tc TimeoutConfig) ServerTimeouts() (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	timeout := tc.RequestTimeout
	readHeaderTimeout = min(timeout, 5*time.Second)
	readTimeout = timeout
	writeTimeout = timeout
	idleTimeout = timeout

	return
}

// RequestDeadline returns the per-request deadline: the request timeout minus the buffer. When the buffer does not
// fit, the full timeout is used.
func (tc TimeoutConfig) RequestDeadline() time.Duration {
	buffer := tc.DeadlineBuffer
	if buffer <= 0 {
		buffer = DefaultDeadlineBuffer
	}

	if d := tc.RequestTimeout - buffer; d > 0 {
		return d
	}

	return tc.RequestTimeout
}

// WithRequestDeadline wraps a handler so the request context is cancelled after timeout. The deadline covers the
// whole response, including bodies that are streamed after the middleware chain returned. A non-positive timeout
// leaves the context untouched.
func WithRequestDeadline(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestRemainingTime returns the time left until the deadline of ctx, or 0 if there is none or it has passed.
func RequestRemainingTime(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}

	return max(time.Until(deadline), 0)
}
