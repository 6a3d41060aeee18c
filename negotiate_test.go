package caffe_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptsTypes(t *testing.T) {
	for _, tc := range []struct {
		name   string
		accept string
		offers []string
		want   string
		ok     bool
	}{
		{"no header accepts the first offer", "", []string{"json", "html"}, "json", true},
		{"short names", "text/html", []string{"json", "html"}, "html", true},
		{"full types", "text/html", []string{"application/json", "text/html"}, "text/html", true},
		{"not acceptable", "text/html", []string{"json"}, "", false},
		{"quality wins", "application/json;q=0.5, text/html", []string{"json", "html"}, "html", true},
		{"specificity wins", "text/*, text/plain", []string{"text/html", "text/plain"}, "text/plain", true},
		{"specific zero quality excludes", "*/*;q=0.1, image/png;q=0", []string{"image/png"}, "", false},
		{"wildcard subtype", "image/*", []string{"json", "image/png"}, "image/png", true},
		{"header order breaks ties", "application/json, text/html", []string{"html", "json"}, "json", true},
		{"parameters must match", "text/html;level=1", []string{"text/html"}, "", false},
		{"quoted commas", `text/html;foo="a,b", application/json;q=0.1`, []string{"json", `text/html;foo="a,b"`}, `text/html;foo="a,b"`, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(t, http.MethodGet, "/")
			if tc.accept != "" {
				c.Request().Header.Set("Accept", tc.accept)
			}

			got, ok := c.Accepts(tc.offers...)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAcceptsWithoutOffers(t *testing.T) {
	c, _ := newTestContext(t, http.MethodGet, "/")
	c.Request().Header.Set("Accept", "application/json;q=0.9, text/html, image/png;q=0")

	got, ok := c.Accepts()
	assert.True(t, ok)
	assert.Equal(t, "text/html", got)
	assert.Equal(t, []string{"text/html", "application/json"}, c.AcceptedTypes())

	c, _ = newTestContext(t, http.MethodGet, "/")
	assert.Equal(t, []string{"*/*"}, c.AcceptedTypes())
}

func TestAcceptsEncodings(t *testing.T) {
	c, _ := newTestContext(t, http.MethodGet, "/")
	assert.Equal(t, []string{"identity"}, c.AcceptedEncodings())
	_, ok := c.AcceptsEncodings("gzip")
	assert.False(t, ok)

	c, _ = newTestContext(t, http.MethodGet, "/")
	c.Request().Header.Set("Accept-Encoding", "gzip, deflate;q=0.5")

	got, ok := c.AcceptsEncodings("deflate", "gzip")
	assert.True(t, ok)
	assert.Equal(t, "gzip", got)

	_, ok = c.AcceptsEncodings("br")
	assert.False(t, ok)

	got, ok = c.AcceptsEncodings("identity")
	assert.True(t, ok)
	assert.Equal(t, "identity", got)
	assert.Equal(t, []string{"gzip", "deflate", "identity"}, c.AcceptedEncodings())

	c, _ = newTestContext(t, http.MethodGet, "/")
	c.Request().Header.Set("Accept-Encoding", "gzip, identity;q=0")
	_, ok = c.AcceptsEncodings("identity")
	assert.False(t, ok)
}

func TestAcceptsCharsets(t *testing.T) {
	c, _ := newTestContext(t, http.MethodGet, "/")
	c.Request().Header.Set("Accept-Charset", "utf-8, iso-8859-1;q=0.2")

	got, ok := c.AcceptsCharsets("iso-8859-1", "utf-8")
	assert.True(t, ok)
	assert.Equal(t, "utf-8", got)

	got, ok = c.AcceptsCharsets("ISO-8859-1")
	assert.True(t, ok)
	assert.Equal(t, "ISO-8859-1", got)

	_, ok = c.AcceptsCharsets("utf-16")
	assert.False(t, ok)
}

func TestAcceptsLanguages(t *testing.T) {
	c, _ := newTestContext(t, http.MethodGet, "/")
	c.Request().Header.Set("Accept-Language", "en;q=0.8, es, pt")

	got, ok := c.AcceptsLanguages("en", "es")
	assert.True(t, ok)
	assert.Equal(t, "es", got)

	got, ok = c.AcceptsLanguages("en-US", "fr")
	assert.True(t, ok)
	assert.Equal(t, "en-US", got)

	_, ok = c.AcceptsLanguages("fr")
	assert.False(t, ok)

	assert.Equal(t, []string{"es", "pt", "en"}, c.AcceptedLanguages())

	c, _ = newTestContext(t, http.MethodGet, "/")
	c.Request().Header.Set("Accept-Language", "en-US, en;q=0.9")
	got, ok = c.AcceptsLanguages("en", "en-US")
	assert.True(t, ok)
	assert.Equal(t, "en-US", got)
}
