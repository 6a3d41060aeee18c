package caffe

import (
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Body returns the response body as last set with [Context.SetBody].
func (c *Context) Body() any { return c.body }

// SetBody sets the response body. Supported shapes are nil (no body), string, []byte, io.Reader (streamed, not
// measured) and any other value, which is serialized as JSON when the response is finalized.
//
// Setting a body is what drives the status default: a nil body turns a status that was never set explicitly into
// 204 and strips the content headers, any other body turns it into 200. The Content-Length is recomputed on every
// call and a Content-Type is picked from the body shape when none was set. After the headers have been sent the
// call is logged and ignored.
func (c *Context) SetBody(v any) {
	if c.HeadersSent() {
		c.logs.LogBodyAfterHeadersSent(c.Method(), c.Path())
		return
	}

	c.body = v
	h := c.res.Header()

	if v == nil {
		if !c.explicitStatus {
			c.status = http.StatusNoContent
		}

		h.Del("Content-Type")
		h.Del("Content-Length")
		h.Del("Transfer-Encoding")
		return
	}

	if !c.explicitStatus {
		c.status = http.StatusOK
	}

	typed := h.Get("Content-Type") != ""

	switch b := v.(type) {
	case string:
		if !typed {
			if strings.HasPrefix(strings.TrimLeft(b, " \t\r\n"), "<") {
				c.SetType("html")
			} else {
				c.SetType("text")
			}
		}
		c.SetLength(int64(len(b)))
	case []byte:
		if !typed {
			c.SetType("bin")
		}
		c.SetLength(int64(len(b)))
	case io.Reader:
		if !typed {
			c.SetType("bin")
		}
		h.Del("Content-Length")
	default:
		// measured when serialized
		h.Del("Content-Length")
		if !typed {
			c.SetType("json")
		}
	}
}

// Length returns the response content length. A Content-Length header that parses as a number wins, including an
// explicit zero. Without it, string and []byte bodies are measured. In all other cases ok is false.
func (c *Context) Length() (n int64, ok bool) {
	if v := c.res.Header().Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n, true
		}
	}

	switch b := c.body.(type) {
	case string:
		return int64(len(b)), true
	case []byte:
		return int64(len(b)), true
	default:
		return 0, false
	}
}

// SetLength sets the Content-Length header unless the headers have been sent.
func (c *Context) SetLength(n int64) {
	if c.HeadersSent() {
		return
	}

	c.res.Header().Set("Content-Length", strconv.FormatInt(n, 10))
}
