package caffe

import (
	"net/http"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrorHandler is called with every failure that escapes the middleware chain, before the failure response is
// written.
type ErrorHandler func(c *Context, err error)

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithLogger sets the logger the dispatcher reports to.
func WithLogger(logs Logger) Option {
	return func(d *Dispatcher) { d.logs = logs }
}

// WithRouter sets the route table that runs after all middleware passed to [Dispatcher.Use].
func WithRouter(r *Router) Option {
	return func(d *Dispatcher) { d.router = r }
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(d *Dispatcher) { d.onError = h }
}

// WithSilent stops the default error handler from logging application errors. Non-error failures are still
// reported.
func WithSilent(silent bool) Option {
	return func(d *Dispatcher) { d.silent = silent }
}

// WithKeptHeaders names response headers that survive when a failure replaces the response, such as a request
// id set by earlier middleware.
func WithKeptHeaders(names ...string) Option {
	return func(d *Dispatcher) {
		for _, name := range names {
			d.kept = append(d.kept, http.CanonicalHeaderKey(name))
		}
	}
}

// Dispatcher turns a middleware chain into an http.Handler. It creates one [Context] per request, runs the chain
// over it and writes the response from the state the chain left behind.
type Dispatcher struct {
	logs    Logger
	router  *Router
	onError ErrorHandler
	silent  bool
	kept    []string

	used    []Middleware
	build   sync.Once
	chain   Middleware
	serving atomic.Bool
}

// NewDispatcher inits a dispatcher with an empty router.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}

	if d.logs == nil {
		d.logs = defaultLogger()
	}
	if d.router == nil {
		d.router = NewRouter()
	}
	if d.onError == nil {
		d.onError = d.defaultErrorHandler
	}

	return d
}

// Use appends middleware to the chain. It panics once the first request has been served.
func (d *Dispatcher) Use(mw ...Middleware) {
	if d.serving.Load() {
		panic("caffe: cannot call Use() after serving the first request")
	}

	d.used = append(d.used, mw...)
}

// Router returns the route table of the dispatcher.
func (d *Dispatcher) Router() *Router { return d.router }

// Reverse builds the path of a named route.
func (d *Dispatcher) Reverse(name string, vals ...string) (string, error) {
	return d.router.Reverse(name, vals...)
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.build.Do(func() {
		d.serving.Store(true)
		d.chain = Compose(append(slices.Clone(d.used), d.router.Middleware())...)
	})

	c := NewContext(w, r, d.logs)
	if err := d.run(c); err != nil {
		d.fail(c, err)
		return
	}

	if err := d.respond(c); err != nil {
		d.fail(c, err)
	}
}

// run executes the chain and turns panics into errors.
func (d *Dispatcher) run(c *Context) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler { //nolint:errorlint
				panic(v)
			}

			err = nonError(v)
		}
	}()

	return d.chain(c, Terminal)
}

// defaultErrorHandler reports failures that are not a 404, not exposed to the client and not silenced. Non-error
// failures are always reported.
func (d *Dispatcher) defaultErrorHandler(_ *Context, err error) {
	if errors.Is(err, ErrNonError) {
		d.logs.LogNonErrorFailure(err)
		return
	}

	if CodeOf(err) == CodeNotFound || Exposed(err) || d.silent {
		return
	}

	d.logs.LogUnhandledError(err)
}

// fail hands err to the error handler and, unless the headers went out already, replaces the response with a plain
// text error.
func (d *Dispatcher) fail(c *Context, err error) {
	d.onError(c, err)

	closeBody(c.body)
	if c.HeadersSent() {
		return
	}

	code := int(CodeOf(err))
	if code < 400 || code > 599 {
		code = http.StatusInternalServerError
	}

	msg := http.StatusText(code)
	if herr, ok := asError(err); ok && herr.Exposed() {
		msg = herr.Message()
	}

	h := c.res.Header()
	for name := range h {
		if !slices.Contains(d.kept, name) {
			delete(h, name)
		}
	}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(msg)))
	h.Set("X-Content-Type-Options", "nosniff")

	c.status, c.body = code, msg
	c.res.WriteHeader(code)
	if c.Method() == http.MethodHead {
		return
	}

	if _, err := c.res.Write([]byte(msg)); err != nil {
		d.logs.LogResponseWriteError(err)
	}
}

// Brew returns a handler that runs mw for every request with the default settings.
func Brew(mw ...Middleware) http.Handler {
	d := NewDispatcher()
	d.Use(mw...)
	return d
}
