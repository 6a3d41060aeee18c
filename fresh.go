package caffe

import (
	"net/http"
	"strings"
)

// Fresh reports whether the client's cached representation is still valid: the request must be a GET or HEAD, the
// status must be 2xx or 304 and the response validators (ETag, Last-Modified) must satisfy the conditional request
// headers.
func (c *Context) Fresh() bool {
	if m := c.req.Method; m != http.MethodGet && m != http.MethodHead {
		return false
	}

	if s := c.status; (s >= 200 && s < 300) || s == http.StatusNotModified {
		return fresh(c.req.Header, c.res.Header())
	}

	return false
}

// Stale is the negation of [Context.Fresh].
func (c *Context) Stale() bool { return !c.Fresh() }

// fresh checks the conditional request headers against the response validators.
func fresh(req, res http.Header) bool {
	modifiedSince := req.Get("If-Modified-Since")
	noneMatch := req.Get("If-None-Match")
	if modifiedSince == "" && noneMatch == "" {
		return false
	}

	if hasNoCache(req.Values("Cache-Control")) {
		return false
	}

	if noneMatch != "" && strings.TrimSpace(noneMatch) != "*" {
		etag := res.Get("ETag")
		if etag == "" || !etagMatches(noneMatch, etag) {
			return false
		}
	}

	if modifiedSince != "" {
		lastModified := res.Get("Last-Modified")
		if lastModified == "" {
			return false
		}

		lm, err1 := http.ParseTime(lastModified)
		ims, err2 := http.ParseTime(modifiedSince)
		if err1 != nil || err2 != nil || lm.After(ims) {
			return false
		}
	}

	return true
}

func hasNoCache(vals []string) bool {
	for _, v := range vals {
		for _, d := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(d), "no-cache") {
				return true
			}
		}
	}
	return false
}

// etagMatches reports whether any entity tag in the If-None-Match list equals etag, comparing weakly.
func etagMatches(list, etag string) bool {
	for _, tag := range strings.Split(list, ",") {
		tag = strings.TrimSpace(tag)
		if tag == etag || "W/"+tag == etag || tag == "W/"+etag {
			return true
		}
	}
	return false
}
