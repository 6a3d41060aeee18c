package caffe

import (
	"net/http"
)

// ResponseWriter wraps the outbound http.ResponseWriter and reports whether headers were transmitted already. Code
// that writes to it directly takes over the response, the dispatcher will not finalize the body afterwards.
type ResponseWriter interface {
	http.ResponseWriter
	// Status returns the status code that was sent, or 0 if nothing has been sent yet.
	Status() int
	// Size returns the number of body bytes written.
	Size() int
	// Written returns whether the headers have been sent.
	Written() bool
}

type responseWriter struct {
	http.ResponseWriter
	status  int
	size    int
	written bool
}

var (
	_ http.ResponseWriter = (*responseWriter)(nil)
	_ http.Flusher        = (*responseWriter)(nil)
	_ ResponseWriter      = (*responseWriter)(nil)
)

// NewResponseWriter wraps w. If w already is a [ResponseWriter] it is returned unchanged.
func NewResponseWriter(w http.ResponseWriter) ResponseWriter {
	if rw, ok := w.(ResponseWriter); ok {
		return rw
	}

	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) Status() int   { return rw.status }
func (rw *responseWriter) Size() int     { return rw.size }
func (rw *responseWriter) Written() bool { return rw.written }

// WriteHeader sends the status line and headers. Only the first call has effect.
func (rw *responseWriter) WriteHeader(status int) {
	if rw.written {
		return
	}

	rw.status = status
	rw.written = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
		rw.status = http.StatusOK
	}

	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Unwrap returns the underlying http.ResponseWriter so http.ResponseController can reach it.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Flush implements http.Flusher. Flushing commits the headers.
func (rw *responseWriter) Flush() {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}

	_ = http.NewResponseController(rw.ResponseWriter).Flush()
}
