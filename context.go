package caffe

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Params holds the named path parameters captured by a matched route.
type Params map[string]string

// Context is the per-request facade over the inbound request and the outbound response. One Context is created
// for every request and passed by reference through the whole middleware chain. It must not be retained after the
// request completes or shared between requests.
//
// Context implements context.Context by delegating to the context of the inbound request.
type Context struct {
	req  *http.Request
	res  ResponseWriter
	logs Logger

	originalURL string
	path        string

	status         int
	explicitStatus bool
	body           any
	skipRespond    bool

	params Params
	values map[string]any
	accept *negotiator
}

var _ context.Context = (*Context)(nil)

// NewContext creates the Context for a single request. The response status starts out as 404.
func NewContext(w http.ResponseWriter, r *http.Request, logs Logger) *Context {
	if logs == nil {
		logs = defaultLogger()
	}

	return &Context{
		req:         r,
		res:         NewResponseWriter(w),
		logs:        logs,
		originalURL: r.URL.RequestURI(),
		path:        r.URL.EscapedPath(),
		status:      http.StatusNotFound,
		values:      map[string]any{},
	}
}

func (c *Context) Deadline() (time.Time, bool) { return c.req.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.req.Context().Done() }
func (c *Context) Err() error                  { return c.req.Context().Err() }
func (c *Context) Value(key any) any           { return c.req.Context().Value(key) }

// SetRequestContext replaces the context of the inbound request, e.g. to apply a deadline or carry a span.
func (c *Context) SetRequestContext(ctx context.Context) {
	c.req = c.req.WithContext(ctx)
}

// Request returns the inbound request.
func (c *Context) Request() *http.Request { return c.req }

// Response returns the outbound response writer. Writing to it directly takes over the response.
func (c *Context) Response() ResponseWriter { return c.res }

// Method returns the request method.
func (c *Context) Method() string { return c.req.Method }

// Path returns the escaped request path. Routing matches against this value.
func (c *Context) Path() string { return c.path }

// SetPath rewrites the path used by downstream routing, the query string is kept.
func (c *Context) SetPath(p string) { c.path = p }

// URL returns the request URL.
func (c *Context) URL() *url.URL { return c.req.URL }

// OriginalURL returns the request URI as it was received, before any rewriting.
func (c *Context) OriginalURL() string { return c.originalURL }

// Querystring returns the raw query without the leading "?".
func (c *Context) Querystring() string { return c.req.URL.RawQuery }

// Query returns the parsed query string.
func (c *Context) Query() url.Values { return c.req.URL.Query() }

// Host returns the host the request was sent to.
func (c *Context) Host() string { return c.req.Host }

// Secure reports whether the request came in over TLS.
func (c *Context) Secure() bool { return c.req.TLS != nil }

// Header returns the inbound request headers.
func (c *Context) Header() http.Header { return c.req.Header }

// Get returns the first value of the request header field. Lookup is case-insensitive and "Referrer" is treated as
// an alias of "Referer".
func (c *Context) Get(field string) string {
	switch strings.ToLower(field) {
	case "referer", "referrer":
		if v := c.req.Header.Get("Referer"); v != "" {
			return v
		}
		return c.req.Header.Get("Referrer")
	default:
		return c.req.Header.Get(field)
	}
}

// Params returns the parameters captured by the matched route, or nil when no route matched.
func (c *Context) Params() Params { return c.params }

// Param returns a single route parameter or "" if it was not captured.
func (c *Context) Param(name string) string { return c.params[name] }

func (c *Context) setParams(p Params) { c.params = p }

// Status returns the response status code.
func (c *Context) Status() int { return c.status }

// SetStatus sets the response status code and marks it as explicitly set. Setting a status that forbids a body
// (204, 205, 304) drops the current body. After the headers have been sent this is a no-op.
func (c *Context) SetStatus(code int) {
	if code < 100 || code > 999 {
		panic(errors.Newf("caffe: invalid status code: %d", code))
	}

	if c.HeadersSent() {
		return
	}

	c.status = code
	c.explicitStatus = true
	if c.body != nil && isEmptyStatus(code) {
		c.body = nil
	}
}

// Message returns the standard reason phrase of the current status.
func (c *Context) Message() string { return http.StatusText(c.status) }

// HeadersSent reports whether the response headers were already transmitted.
func (c *Context) HeadersSent() bool { return c.res.Written() }

// Writable reports whether the response can still be shaped through the Context.
func (c *Context) Writable() bool { return !c.res.Written() }

// SkipResponse tells the dispatcher not to finalize the response, for middleware that writes to [Context.Response]
// itself.
func (c *Context) SkipResponse() { c.skipRespond = true }

// Idempotent reports whether the request method is idempotent.
func (c *Context) Idempotent() bool {
	switch c.req.Method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// GetValue returns a custom value stored by an upstream middleware.
func (c *Context) GetValue(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// SetValue stores a custom value for downstream middleware. Keys that collide with a built-in accessor are
// rejected with [ErrReservedKey].
func (c *Context) SetValue(key string, v any) error {
	if err := AssertSafeKey(key); err != nil {
		return err
	}

	c.values[key] = v
	return nil
}

// ValueAs returns the custom value stored under key if it has type T.
func ValueAs[T any](c *Context, key string) (T, bool) {
	v, ok := c.values[key].(T)
	return v, ok
}

// reservedKeys holds the lower-cased names of all Context accessors plus the names of its core state.
var reservedKeys = func() map[string]struct{} {
	typ := reflect.TypeOf(&Context{})
	names := []string{"body", "status", "params", "request", "response", "state"}
	for i := range typ.NumMethod() {
		names = append(names, typ.Method(i).Name)
	}

	return lo.SliceToMap(names, func(n string) (string, struct{}) {
		return strings.ToLower(n), struct{}{}
	})
}()

// AssertSafeKey returns an error if key cannot be used for custom values because it would shadow a built-in
// Context accessor. Matching is case-insensitive.
func AssertSafeKey(key string) error {
	if key == "" {
		return errors.Wrap(ErrReservedKey, "empty key")
	}

	if _, ok := reservedKeys[strings.ToLower(key)]; ok {
		return errors.Wrapf(ErrReservedKey, "key %q", key)
	}

	return nil
}

// isEmptyStatus reports whether the status forbids a response body.
func isEmptyStatus(code int) bool {
	return code == http.StatusNoContent || code == http.StatusResetContent || code == http.StatusNotModified
}
