package caffe

import (
	"html"
	"net/http"
)

// Redirect points the client at target. The status becomes 302 unless a redirect status (3xx) was set
// explicitly before. Clients that accept HTML get a small anchor document, others a plain-text line.
func (c *Context) Redirect(target string) {
	if c.HeadersSent() {
		c.logs.LogBodyAfterHeadersSent(c.Method(), c.Path())
		return
	}

	c.res.Header().Set("Location", target)
	if !c.explicitStatus || c.status < 300 || c.status >= 400 {
		c.SetStatus(http.StatusFound)
	}

	if _, ok := c.Accepts("html"); ok {
		escaped := html.EscapeString(target)
		c.SetType("html")
		c.SetBody(`Redirecting to <a href="` + escaped + `">` + escaped + `</a>.`)
		return
	}

	c.SetType("text")
	c.SetBody("Redirecting to " + target + ".")
}

// RedirectBack redirects to the Referer of the request, falling back to alt and then to "/".
func (c *Context) RedirectBack(alt string) {
	target := c.Get("Referrer")
	if target == "" {
		target = alt
	}
	if target == "" {
		target = "/"
	}

	c.Redirect(target)
}
