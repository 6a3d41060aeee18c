package servetest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/caffe"
	"github.com/advdv/caffe/serve"
	"go.uber.org/zap/zaptest"
)

// CallMiddleware serves req through mw on a fresh dispatcher and returns the recorded response. The chain gets a
// request id and a request logger that writes to the test log, so handlers can call [serve.Log].
func CallMiddleware(tb testing.TB, req *http.Request, mw ...caffe.Middleware) *httptest.ResponseRecorder {
	tb.Helper()

	d := caffe.NewDispatcher(
		caffe.WithLogger(caffe.NewTestLogger(tb)),
		caffe.WithKeptHeaders(serve.RequestIDHeader),
	)
	d.Use(serve.WithRequestID(), serve.WithRequestLogger(zaptest.NewLogger(tb)))
	d.Use(mw...)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)

	return rec
}
