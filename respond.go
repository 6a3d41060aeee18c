package caffe

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
)

// respond writes the response from the state of the context. Returned errors have not touched the wire yet and go
// through the failure path.
func (d *Dispatcher) respond(c *Context) error {
	if c.skipRespond || c.HeadersSent() {
		return nil
	}

	h := c.res.Header()
	code := c.status

	if isEmptyStatus(code) {
		closeBody(c.body)
		c.body = nil
		h.Del("Content-Type")
		h.Del("Content-Length")
		h.Del("Transfer-Encoding")
		c.res.WriteHeader(code)
		return nil
	}

	if c.Method() == http.MethodHead {
		if _, ok := c.Length(); !ok && isJSONBody(c.body) {
			data, err := json.Marshal(c.body)
			if err != nil {
				return errors.Wrap(err, "marshal json body")
			}
			c.SetLength(int64(len(data)))
		}

		closeBody(c.body)
		c.res.WriteHeader(code)
		return nil
	}

	var data []byte
	switch b := c.body.(type) {
	case nil:
		msg := http.StatusText(code)
		if msg == "" {
			msg = strconv.Itoa(code)
		}

		c.SetType("text")
		c.SetLength(int64(len(msg)))
		data = []byte(msg)
	case string:
		data = []byte(b)
	case []byte:
		data = b
	case io.Reader:
		return d.stream(c, b)
	default:
		var err error
		if data, err = json.Marshal(b); err != nil {
			return errors.Wrap(err, "marshal json body")
		}
		c.SetLength(int64(len(data)))
	}

	c.res.WriteHeader(code)
	if _, err := c.res.Write(data); err != nil {
		d.logs.LogResponseWriteError(err)
	}

	return nil
}

// stream copies a reader body to the client and closes it when it is an io.Closer.
func (d *Dispatcher) stream(c *Context, r io.Reader) error {
	defer closeBody(r)

	c.res.WriteHeader(c.status)
	if _, err := io.Copy(c.res, r); err != nil {
		d.logs.LogResponseWriteError(err)
	}

	return nil
}

func isJSONBody(body any) bool {
	switch body.(type) {
	case nil, string, []byte, io.Reader:
		return false
	default:
		return true
	}
}

func closeBody(body any) {
	if cl, ok := body.(io.Closer); ok {
		_ = cl.Close()
	}
}
