package caffe

import (
	"mime"
	"strings"
)

// shortTypes resolves the short names that are used most. Anything else goes through the extension table of the
// mime package, which depends on the host.
var shortTypes = map[string]string{
	"html":       "text/html; charset=utf-8",
	"htm":        "text/html; charset=utf-8",
	"text":       "text/plain; charset=utf-8",
	"txt":        "text/plain; charset=utf-8",
	"json":       "application/json; charset=utf-8",
	"xml":        "application/xml; charset=utf-8",
	"bin":        "application/octet-stream",
	"form":       "application/x-www-form-urlencoded",
	"urlencoded": "application/x-www-form-urlencoded",
	"multipart":  "multipart/form-data",
	"js":         "text/javascript; charset=utf-8",
	"css":        "text/css; charset=utf-8",
}

// resolveType turns a short type name ("json", ".html") or a full MIME string into a canonical Content-Type
// value. It returns "" if the type cannot be resolved.
func resolveType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}

	if strings.Contains(t, "/") {
		mt, params, err := mime.ParseMediaType(t)
		if err != nil {
			return ""
		}
		return mime.FormatMediaType(mt, params)
	}

	ext := strings.ToLower(strings.TrimPrefix(t, "."))
	if full, ok := shortTypes[ext]; ok {
		return full
	}

	return mime.TypeByExtension("." + ext)
}

// mediaType strips the parameters from a resolved Content-Type value.
func mediaType(full string) string {
	if i := strings.IndexByte(full, ';'); i >= 0 {
		full = full[:i]
	}

	return strings.ToLower(strings.TrimSpace(full))
}

// Type returns the media type of the response without parameters, or "" when no Content-Type is set.
func (c *Context) Type() string {
	return mediaType(c.res.Header().Get("Content-Type"))
}

// SetType sets the response Content-Type from a short name ("json", "html") or a MIME string. When the type cannot
// be resolved the header is removed instead.
func (c *Context) SetType(t string) {
	if c.HeadersSent() {
		return
	}

	if full := resolveType(t); full != "" {
		c.res.Header().Set("Content-Type", full)
		return
	}

	c.res.Header().Del("Content-Type")
}
