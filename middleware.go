package caffe

import "github.com/cockroachdb/errors"

// Next resolves the remainder of the chain. It may be called at most once per middleware invocation.
type Next func() error

// Middleware handles a request by reading and mutating the Context, optionally handing control to the rest of the
// chain through next. Code placed after the call to next runs once everything downstream has completed. A middleware
// that does not call next ends the chain. Failures returned by next should be returned as-is:
//
//	func(c *caffe.Context, next caffe.Next) error {
//	    start := time.Now()
//	    if err := next(); err != nil {
//	        return err
//	    }
//	    c.Set("X-Response-Time", time.Since(start).String())
//	    return nil
//	}
type Middleware func(c *Context, next Next) error

// Compose turns an ordered list of middleware into a single middleware. The middleware provided first is entered
// first and left last. Composing no middleware yields a pass-through to the terminal continuation.
func Compose(mw ...Middleware) Middleware {
	for _, m := range mw {
		if m == nil {
			panic("caffe: nil middleware passed to Compose")
		}
	}

	chain := make([]Middleware, len(mw))
	copy(chain, mw)

	return func(c *Context, next Next) error {
		return dispatch(c, chain, 0, next)
	}
}

// dispatch runs middleware i with a continuation that resolves i+1..n and finally the terminal continuation.
func dispatch(c *Context, chain []Middleware, i int, final Next) error {
	if i == len(chain) {
		if final == nil {
			return nil
		}
		return final()
	}

	var advanced bool
	return chain[i](c, func() error {
		if advanced {
			return errors.WithStack(ErrNextCalledTwice)
		}
		advanced = true

		return dispatch(c, chain, i+1, final)
	})
}

// Terminal is the continuation that completes a chain without doing anything.
func Terminal() error { return nil }
