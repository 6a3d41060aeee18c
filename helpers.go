package caffe

import "github.com/cockroachdb/errors"

// JSON returns middleware that ends the chain with a JSON response. v is either the value to serialize or a
// func(*Context) (any, error) that produces it per request.
func JSON(code int, v any) Middleware {
	return func(c *Context, _ Next) error {
		body := v
		if resolve, ok := v.(func(*Context) (any, error)); ok {
			var err error
			if body, err = resolve(c); err != nil {
				return err
			}
		}

		c.SetStatus(code)
		c.SetType("json")
		c.SetBody(body)
		return nil
	}
}

// Plaintext returns middleware that ends the chain with a text/plain response. v is the text or a function that
// produces it per request.
func Plaintext[T string | func(*Context) string](code int, v T) Middleware {
	return func(c *Context, _ Next) error {
		var text string
		switch v := any(v).(type) {
		case string:
			text = v
		case func(*Context) string:
			text = v(c)
		}

		c.SetStatus(code)
		c.SetType("text")
		c.SetBody(text)
		return nil
	}
}

// Inject returns middleware that stores value under key for downstream middleware. It panics if key is reserved.
func Inject(key string, value any) Middleware {
	mustSafeKey(key)

	return func(c *Context, next Next) error {
		if err := c.SetValue(key, value); err != nil {
			return err
		}
		return next()
	}
}

// Resolve returns middleware that calls factory for every request and stores the result under key, e.g. to attach
// the authenticated user. A factory error ends the chain. It panics if key is reserved.
func Resolve[T any](key string, factory func(c *Context) (T, error)) Middleware {
	mustSafeKey(key)

	return func(c *Context, next Next) error {
		v, err := factory(c)
		if err != nil {
			return errors.Wrapf(err, "resolve %q", key)
		}

		if err := c.SetValue(key, v); err != nil {
			return err
		}
		return next()
	}
}

func mustSafeKey(key string) {
	if err := AssertSafeKey(key); err != nil {
		panic(err)
	}
}
