package caffe

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/http/httpguts"
)

// ResponseHeader returns the outbound header map.
func (c *Context) ResponseHeader() http.Header { return c.res.Header() }

// Set sets a response header, replacing existing values. Values are coerced to their wire form: a []string becomes
// multiple header values, integers and floats are formatted, a time.Time becomes an HTTP date and anything else is
// formatted with fmt.
func (c *Context) Set(field string, value any) error {
	vals, err := c.headerValues(field, value)
	if err != nil {
		return err
	}

	h := c.res.Header()
	h.Del(field)
	for _, v := range vals {
		h.Add(field, v)
	}

	return nil
}

// Append adds values to a response header, keeping the existing ones.
func (c *Context) Append(field string, value any) error {
	vals, err := c.headerValues(field, value)
	if err != nil {
		return err
	}

	for _, v := range vals {
		c.res.Header().Add(field, v)
	}

	return nil
}

// Remove deletes a response header.
func (c *Context) Remove(field string) {
	if c.HeadersSent() {
		return
	}

	c.res.Header().Del(field)
}

func (c *Context) headerValues(field string, value any) ([]string, error) {
	if c.HeadersSent() {
		return nil, errors.Wrapf(ErrHeadersSent, "set header %q", field)
	}

	if !httpguts.ValidHeaderFieldName(field) {
		return nil, errors.Newf("caffe: invalid header field name %q", field)
	}

	vals := headerStrings(value)
	for _, v := range vals {
		if !httpguts.ValidHeaderFieldValue(v) {
			return nil, errors.Newf("caffe: invalid value for header field %q", field)
		}
	}

	return vals, nil
}

func headerStrings(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case int:
		return []string{strconv.Itoa(v)}
	case int64:
		return []string{strconv.FormatInt(v, 10)}
	case uint64:
		return []string{strconv.FormatUint(v, 10)}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(v)}
	case time.Time:
		return []string{v.UTC().Format(http.TimeFormat)}
	case fmt.Stringer:
		return []string{v.String()}
	default:
		return []string{fmt.Sprint(v)}
	}
}
