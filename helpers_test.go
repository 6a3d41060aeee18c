package caffe_test

import (
	"net/http"
	"testing"

	"github.com/advdv/caffe"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	c, _ := newTestContext(t, http.MethodGet, "/")
	require.NoError(t, caffe.JSON(http.StatusAccepted, map[string]int{"n": 1})(c, caffe.Terminal))
	assert.Equal(t, http.StatusAccepted, c.Status())
	assert.Equal(t, "application/json", c.Type())
	assert.Equal(t, map[string]int{"n": 1}, c.Body())

	resolver := func(c *caffe.Context) (any, error) { return []string{c.Method()}, nil }
	c, _ = newTestContext(t, http.MethodDelete, "/")
	require.NoError(t, caffe.JSON(http.StatusOK, resolver)(c, caffe.Terminal))
	assert.Equal(t, []string{"DELETE"}, c.Body())

	failing := func(*caffe.Context) (any, error) { return nil, errors.New("no data") }
	c, _ = newTestContext(t, http.MethodGet, "/")
	require.EqualError(t, caffe.JSON(http.StatusOK, failing)(c, caffe.Terminal), "no data")
	assert.Equal(t, http.StatusNotFound, c.Status())
}

func TestPlaintext(t *testing.T) {
	var called bool
	next := func() error { called = true; return nil }

	c, _ := newTestContext(t, http.MethodGet, "/")
	require.NoError(t, caffe.Plaintext(http.StatusTeapot, "<short and stout>")(c, next))
	assert.Equal(t, http.StatusTeapot, c.Status())
	assert.Equal(t, "text/plain", c.Type())
	assert.Equal(t, "<short and stout>", c.Body())
	assert.False(t, called, "plaintext ends the chain")

	c, _ = newTestContext(t, http.MethodGet, "/hi")
	require.NoError(t, caffe.Plaintext(http.StatusOK, func(c *caffe.Context) string { return c.Path() })(c, next))
	assert.Equal(t, "/hi", c.Body())
}

func TestInject(t *testing.T) {
	var got any
	mw := caffe.Compose(caffe.Inject("db", 42), func(c *caffe.Context, _ caffe.Next) error {
		got, _ = c.GetValue("db")
		return nil
	})

	c, _ := newTestContext(t, http.MethodGet, "/")
	require.NoError(t, mw(c, caffe.Terminal))
	assert.Equal(t, 42, got)

	assert.Panics(t, func() { caffe.Inject("body", 1) })
}

func TestResolve(t *testing.T) {
	type user struct{ Name string }

	var got user
	mw := caffe.Compose(
		caffe.Resolve("user", func(c *caffe.Context) (user, error) {
			if c.Get("Authorization") == "" {
				return user{}, caffe.NewError(caffe.CodeUnauthorized, nil)
			}
			return user{Name: "alice"}, nil
		}),
		func(c *caffe.Context, _ caffe.Next) error {
			got, _ = caffe.ValueAs[user](c, "user")
			return nil
		},
	)

	c, _ := newTestContext(t, http.MethodGet, "/")
	c.Request().Header.Set("Authorization", "token")
	require.NoError(t, mw(c, caffe.Terminal))
	assert.Equal(t, "alice", got.Name)

	c, _ = newTestContext(t, http.MethodGet, "/")
	err := mw(c, caffe.Terminal)
	require.Error(t, err)
	assert.Equal(t, caffe.CodeUnauthorized, caffe.CodeOf(err))
	assert.Contains(t, err.Error(), `resolve "user"`)

	assert.Panics(t, func() {
		caffe.Resolve("Status", func(*caffe.Context) (int, error) { return 0, nil })
	})
}
