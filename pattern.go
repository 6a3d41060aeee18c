package caffe

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

type segmentKind int

const (
	segLiteral    segmentKind = iota
	segParam                  // :name
	segOptional               // :name?
	segZeroOrMore             // :name*
	segOneOrMore              // :name+
)

type segment struct {
	kind  segmentKind
	value string // literal text or parameter name

	decoded string // literal text with escapes resolved
}

// Pattern is a compiled path pattern. Patterns consist of "/"-separated segments that are either literal or a
// named parameter: ":id" captures one segment, ":id?" an optional segment, ":path*" zero or more segments and
// ":path+" one or more. Literal segments match case-insensitively against the decoded path, so they may be written
// either raw ("café") or escaped ("caf%C3%A9"). A single trailing slash on the path is ignored.
type Pattern struct {
	raw      string
	segments []segment
	keys     []string
}

// ParsePattern compiles a path pattern.
func ParsePattern(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, errors.New("empty pattern")
	}
	if raw[0] != '/' {
		return nil, errors.Newf("pattern %q must start with a slash", raw)
	}

	pat := &Pattern{raw: raw}
	trimmed := strings.TrimSuffix(raw[1:], "/")
	if trimmed == "" {
		return pat, nil
	}

	seen := map[string]bool{}
	for _, part := range strings.Split(trimmed, "/") {
		if part == "" {
			return nil, errors.Newf("pattern %q contains an empty segment", raw)
		}

		if part[0] != ':' {
			decoded, err := url.PathUnescape(part)
			if err != nil {
				return nil, errors.Wrapf(err, "pattern %q has an invalid escape", raw)
			}

			pat.segments = append(pat.segments, segment{kind: segLiteral, value: url.PathEscape(decoded), decoded: decoded})
			continue
		}

		name, kind := part[1:], segParam
		switch {
		case strings.HasSuffix(name, "?"):
			name, kind = name[:len(name)-1], segOptional
		case strings.HasSuffix(name, "*"):
			name, kind = name[:len(name)-1], segZeroOrMore
		case strings.HasSuffix(name, "+"):
			name, kind = name[:len(name)-1], segOneOrMore
		}

		if !validParamName(name) {
			return nil, errors.Newf("pattern %q has an invalid parameter name %q", raw, name)
		}
		if seen[name] {
			return nil, errors.Newf("pattern %q uses parameter %q more than once", raw, name)
		}
		seen[name] = true

		pat.segments = append(pat.segments, segment{kind: kind, value: name})
		pat.keys = append(pat.keys, name)
	}

	return pat, nil
}

// MustParsePattern is like [ParsePattern] but panics on error.
func MustParsePattern(raw string) *Pattern {
	pat, err := ParsePattern(raw)
	if err != nil {
		panic("caffe: " + err.Error())
	}
	return pat
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// String returns the pattern as it was written.
func (p *Pattern) String() string { return p.raw }

// Keys returns the parameter names in the order they appear.
func (p *Pattern) Keys() []string { return p.keys }

// Match matches an escaped path against the pattern and returns the percent-decoded parameters. ok is false if the
// path does not match. A malformed escape in a captured segment is returned as an error.
func (p *Pattern) Match(escapedPath string) (params Params, ok bool, err error) {
	path := escapedPath
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	path = strings.TrimPrefix(path, "/")

	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}

	raw := make([]string, len(p.keys))
	captured := make([]bool, len(p.keys))
	if !p.match(parts, 0, 0, 0, raw, captured) {
		return nil, false, nil
	}

	params = make(Params, len(p.keys))
	for i, key := range p.keys {
		if !captured[i] {
			continue
		}

		v, err := url.PathUnescape(raw[i])
		if err != nil {
			return nil, false, errors.Wrapf(err, "decode parameter %q", key)
		}
		params[key] = v
	}

	return params, true, nil
}

// match walks segments and path parts, backtracking over the variable-length segments. k is the index of the
// next parameter.
func (p *Pattern) match(parts []string, si, pi, k int, raw []string, captured []bool) bool {
	if si == len(p.segments) {
		return pi == len(parts)
	}

	seg := p.segments[si]
	switch seg.kind {
	case segLiteral:
		return pi < len(parts) && literalMatch(parts[pi], seg) &&
			p.match(parts, si+1, pi+1, k, raw, captured)
	case segParam:
		if pi >= len(parts) || parts[pi] == "" {
			return false
		}
		raw[k], captured[k] = parts[pi], true
		return p.match(parts, si+1, pi+1, k+1, raw, captured)
	case segOptional:
		if pi < len(parts) && parts[pi] != "" {
			raw[k], captured[k] = parts[pi], true
			if p.match(parts, si+1, pi+1, k+1, raw, captured) {
				return true
			}
		}
		raw[k], captured[k] = "", false
		return p.match(parts, si+1, pi, k+1, raw, captured)
	default:
		least := 0
		if seg.kind == segOneOrMore {
			least = 1
		}

		for n := len(parts) - pi; n >= least; n-- {
			if n > 0 && hasEmpty(parts[pi:pi+n]) {
				continue
			}

			raw[k], captured[k] = strings.Join(parts[pi:pi+n], "/"), n > 0
			if p.match(parts, si+1, pi+n, k+1, raw, captured) {
				return true
			}
		}

		raw[k], captured[k] = "", false
		return false
	}
}

func literalMatch(part string, seg segment) bool {
	if strings.EqualFold(part, seg.value) {
		return true
	}

	decoded, err := url.PathUnescape(part)
	return err == nil && strings.EqualFold(decoded, seg.decoded)
}

func hasEmpty(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return true
		}
	}
	return false
}

// Build substitutes the values for the parameters, in order, and returns the resulting path. Values are
// path-escaped; values of multi-segment parameters keep their slashes. Optional parameters consume a value when one
// is left.
func (p *Pattern) Build(vals ...string) (string, error) {
	var sb strings.Builder
	n := 0

	for _, seg := range p.segments {
		switch seg.kind {
		case segLiteral:
			sb.WriteString("/" + seg.value)
			continue
		case segParam, segOneOrMore:
			if n >= len(vals) || vals[n] == "" {
				return "", errors.Newf("not enough values to build %q, missing %q", p.raw, seg.value)
			}
		case segOptional, segZeroOrMore:
			if n >= len(vals) || vals[n] == "" {
				n++
				continue
			}
		}

		val := vals[n]
		n++

		if seg.kind == segOneOrMore || seg.kind == segZeroOrMore {
			escaped := strings.Split(val, "/")
			for i, s := range escaped {
				escaped[i] = url.PathEscape(s)
			}
			sb.WriteString("/" + strings.Join(escaped, "/"))
			continue
		}

		sb.WriteString("/" + url.PathEscape(val))
	}

	if n < len(vals) {
		return "", errors.Newf("too many values to build %q: got %d, want at most %d", p.raw, len(vals), n)
	}

	if sb.Len() == 0 {
		return "/", nil
	}
	return sb.String(), nil
}
