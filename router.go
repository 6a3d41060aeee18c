package caffe

import (
	"net/http"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// route is one entry of the route table.
type route struct {
	name    string
	methods []string
	pattern *Pattern
	handler Middleware
}

func newRoute(methods []string, pat *Pattern, h []Middleware) *route {
	if len(methods) == 0 {
		panic("caffe: route " + pat.String() + " has no methods")
	}
	if len(h) == 0 {
		panic("caffe: route " + pat.String() + " has no handler")
	}

	handler := h[0]
	if len(h) > 1 {
		handler = Compose(h...)
	}

	return &route{
		methods: lo.Map(methods, func(m string, _ int) string { return strings.ToUpper(m) }),
		pattern: pat,
		handler: handler,
	}
}

// serve delegates to the handler when method and path match, and falls through to next otherwise.
func (rt *route) serve(c *Context, next Next) error {
	if !slices.Contains(rt.methods, c.Method()) {
		return next()
	}

	params, ok, err := rt.pattern.Match(c.Path())
	if err != nil {
		return NewError(CodeBadRequest, errors.Wrapf(err, "match %s", rt.pattern))
	}
	if !ok {
		return next()
	}

	c.setParams(params)
	return rt.handler(c, next)
}

// Route returns middleware that runs h when the request method equals method and the path matches pattern. The
// captured parameters are available through [Context.Params]. Requests that do not match fall through to the next
// middleware. Multiple handlers are composed into a sub-chain. An invalid pattern panics.
func Route(method, pattern string, h ...Middleware) Middleware {
	return RouteMethods([]string{method}, pattern, h...)
}

// RouteMethods is like [Route] but matches any of the given methods.
func RouteMethods(methods []string, pattern string, h ...Middleware) Middleware {
	return newRoute(methods, MustParsePattern(pattern), h).serve
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Name    string
	Methods []string
	Pattern string
}

// Router is an append-only route table. Routes are tried in registration order and the first match wins. The
// table is sealed once its middleware is taken, registering a route after that panics.
type Router struct {
	routes   []*route
	reverser *Reverser
	sealed   bool
}

// NewRouter inits an empty router.
func NewRouter() *Router {
	return &Router{reverser: NewReverser()}
}

// Handle registers h for method and pattern. An optional name makes the route reversible.
func (r *Router) Handle(method, pattern string, h Middleware, name ...string) {
	r.HandleMethods([]string{method}, pattern, h, name...)
}

// HandleMethods registers h for any of the methods and the pattern.
func (r *Router) HandleMethods(methods []string, pattern string, h Middleware, name ...string) {
	if r.sealed {
		panic("caffe: cannot register route " + pattern + " after the router was sealed")
	}

	var pat *Pattern
	if len(name) > 0 {
		pat = r.reverser.Named(name[0], pattern)
	} else {
		pat = MustParsePattern(pattern)
	}

	rt := newRoute(methods, pat, []Middleware{h})
	if len(name) > 0 {
		rt.name = name[0]
	}

	r.routes = append(r.routes, rt)
}

func (r *Router) Get(pattern string, h Middleware, name ...string) {
	r.Handle(http.MethodGet, pattern, h, name...)
}

func (r *Router) Post(pattern string, h Middleware, name ...string) {
	r.Handle(http.MethodPost, pattern, h, name...)
}

func (r *Router) Put(pattern string, h Middleware, name ...string) {
	r.Handle(http.MethodPut, pattern, h, name...)
}

func (r *Router) Patch(pattern string, h Middleware, name ...string) {
	r.Handle(http.MethodPatch, pattern, h, name...)
}

func (r *Router) Delete(pattern string, h Middleware, name ...string) {
	r.Handle(http.MethodDelete, pattern, h, name...)
}

// Routes lists the registered routes in registration order.
func (r *Router) Routes() []RouteInfo {
	return lo.Map(r.routes, func(rt *route, _ int) RouteInfo {
		return RouteInfo{Name: rt.name, Methods: slices.Clone(rt.methods), Pattern: rt.pattern.String()}
	})
}

// Reverse builds the path of a named route.
func (r *Router) Reverse(name string, vals ...string) (string, error) {
	return r.reverser.Reverse(name, vals...)
}

// Middleware seals the table and returns middleware that tries every route in order.
func (r *Router) Middleware() Middleware {
	r.sealed = true

	return Compose(lo.Map(r.routes, func(rt *route, _ int) Middleware { return rt.serve })...)
}
