package caffe

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// maxAcceptLength caps how much of an Accept* header is parsed.
const maxAcceptLength = 8192

// acceptSpec is one entry of an Accept* header.
type acceptSpec struct {
	value  string // media range, coding, charset or full language tag
	typ    string // media type or language prefix
	sub    string // media subtype or language suffix
	params map[string]string
	q      float64
	i      int
}

// priority describes how well an offer matched the accepted specs: i is the offer index, o the index of the
// matching spec and s its specificity.
type priority struct {
	i, o, s int
	q       float64
}

// negotiator is the parsed snapshot of the Accept* request headers.
type negotiator struct {
	types     []acceptSpec
	encodings []acceptSpec
	charsets  []acceptSpec
	languages []acceptSpec
}

func (c *Context) negotiator() *negotiator {
	if c.accept != nil {
		return c.accept
	}

	h := c.req.Header
	c.accept = &negotiator{
		types:     parseAccept(headerOr(h.Values("Accept"), "*/*"), parseMediaRange),
		encodings: withIdentity(parseAccept(strings.Join(h.Values("Accept-Encoding"), ","), parseToken)),
		charsets:  parseAccept(headerOr(h.Values("Accept-Charset"), "*"), parseToken),
		languages: parseAccept(headerOr(h.Values("Accept-Language"), "*"), parseLanguage),
	}

	return c.accept
}

// Accepts returns the best of the offered types according to the Accept header. Offers may be MIME strings or short
// names such as "json" or "html"; the offer is returned as given. With no offers the client's most preferred type is
// returned; the full ranked list is available from [Context.AcceptedTypes]. ok is false when nothing is acceptable.
func (c *Context) Accepts(offers ...string) (string, bool) {
	if len(offers) == 0 {
		return first(c.AcceptedTypes())
	}

	return first(preferredOffers(c.negotiator().types, offers, matchMediaType))
}

// AcceptedTypes returns the acceptable media ranges in the client's order of preference.
func (c *Context) AcceptedTypes() []string { return ranked(c.negotiator().types) }

// AcceptsEncodings returns the best of the offered content codings. "identity" is acceptable unless the client
// excludes it explicitly. With no offers the top entry of [Context.AcceptedEncodings] is returned.
func (c *Context) AcceptsEncodings(offers ...string) (string, bool) {
	if len(offers) == 0 {
		return first(c.AcceptedEncodings())
	}

	return first(preferredOffers(c.negotiator().encodings, offers, matchToken))
}

// AcceptedEncodings returns the acceptable content codings in the client's order of preference.
func (c *Context) AcceptedEncodings() []string { return ranked(c.negotiator().encodings) }

// AcceptsCharsets returns the best of the offered charsets. With no offers the top entry of
// [Context.AcceptedCharsets] is returned.
func (c *Context) AcceptsCharsets(offers ...string) (string, bool) {
	if len(offers) == 0 {
		return first(c.AcceptedCharsets())
	}

	return first(preferredOffers(c.negotiator().charsets, offers, matchToken))
}

// AcceptedCharsets returns the acceptable charsets in the client's order of preference.
func (c *Context) AcceptedCharsets() []string { return ranked(c.negotiator().charsets) }

// AcceptsLanguages returns the best of the offered languages. A requested "en" accepts an offered "en-US" and the
// other way around, exact matches rank higher. With no offers the top entry of [Context.AcceptedLanguages] is
// returned.
func (c *Context) AcceptsLanguages(offers ...string) (string, bool) {
	if len(offers) == 0 {
		return first(c.AcceptedLanguages())
	}

	return first(preferredOffers(c.negotiator().languages, offers, matchLanguage))
}

// AcceptedLanguages returns the acceptable languages in the client's order of preference.
func (c *Context) AcceptedLanguages() []string { return ranked(c.negotiator().languages) }

func first(vals []string) (string, bool) {
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func headerOr(vals []string, def string) string {
	if len(vals) == 0 {
		return def
	}
	return strings.Join(vals, ",")
}

// parseAccept splits an Accept* header into specs, dropping entries that do not parse.
func parseAccept(header string, parse func(string) (acceptSpec, bool)) []acceptSpec {
	if len(header) > maxAcceptLength {
		header = header[:maxAcceptLength]
	}

	var specs []acceptSpec
	for _, part := range splitQuoted(header, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		segs := splitQuoted(part, ';')
		spec, ok := parse(strings.TrimSpace(segs[0]))
		if !ok {
			continue
		}

		spec.q = 1
		for _, p := range segs[1:] {
			key, val, found := strings.Cut(strings.TrimSpace(p), "=")
			if !found {
				continue
			}

			key = strings.ToLower(strings.TrimSpace(key))
			val = strings.Trim(strings.TrimSpace(val), `"`)
			if key == "q" {
				if q, err := strconv.ParseFloat(val, 64); err == nil && q >= 0 && q <= 1 {
					spec.q = q
				}
				continue
			}

			if spec.params == nil {
				spec.params = map[string]string{}
			}
			spec.params[key] = val
		}

		spec.i = len(specs)
		specs = append(specs, spec)
	}

	return specs
}

// withIdentity adds the implicit "identity" coding with the lowest quality seen, unless it is listed.
func withIdentity(specs []acceptSpec) []acceptSpec {
	minQ := 1.0
	for _, s := range specs {
		if strings.EqualFold(s.value, "identity") {
			return specs
		}
		minQ = min(minQ, s.q)
	}

	return append(specs, acceptSpec{value: "identity", q: minQ, i: len(specs)})
}

func parseMediaRange(s string) (acceptSpec, bool) {
	typ, sub, ok := strings.Cut(s, "/")
	typ, sub = strings.TrimSpace(typ), strings.TrimSpace(sub)
	if !ok || typ == "" || sub == "" || strings.ContainsAny(sub, "/ ") {
		return acceptSpec{}, false
	}

	return acceptSpec{value: typ + "/" + sub, typ: typ, sub: sub}, true
}

func parseToken(s string) (acceptSpec, bool) {
	if s == "" || strings.ContainsAny(s, " \t") {
		return acceptSpec{}, false
	}
	return acceptSpec{value: s}, true
}

func parseLanguage(s string) (acceptSpec, bool) {
	if s == "" || strings.ContainsAny(s, " \t") {
		return acceptSpec{}, false
	}

	prefix, suffix, _ := strings.Cut(s, "-")
	return acceptSpec{value: s, typ: prefix, sub: suffix}, true
}

// matchMediaType computes the specificity of offer against a media range, or false if it does not match.
func matchMediaType(offer string, spec acceptSpec) (int, bool) {
	o, ok := parseOfferType(offer)
	if !ok {
		return 0, false
	}

	s := 0
	switch {
	case strings.EqualFold(spec.typ, o.typ):
		s |= 4
	case spec.typ != "*":
		return 0, false
	}

	switch {
	case strings.EqualFold(spec.sub, o.sub):
		s |= 2
	case spec.sub != "*":
		return 0, false
	}

	if len(spec.params) > 0 {
		for k, v := range spec.params {
			if v != "*" && !strings.EqualFold(v, o.params[k]) {
				return 0, false
			}
		}
		s |= 1
	}

	return s, true
}

// parseOfferType parses an offered type, resolving short names through the MIME table.
func parseOfferType(offer string) (acceptSpec, bool) {
	full := offer
	if !strings.Contains(offer, "/") {
		full = mediaType(resolveType(offer))
	}

	segs := splitQuoted(full, ';')
	spec, ok := parseMediaRange(strings.TrimSpace(segs[0]))
	if !ok {
		return acceptSpec{}, false
	}

	for _, p := range segs[1:] {
		if key, val, found := strings.Cut(strings.TrimSpace(p), "="); found {
			if spec.params == nil {
				spec.params = map[string]string{}
			}
			spec.params[strings.ToLower(strings.TrimSpace(key))] = strings.Trim(strings.TrimSpace(val), `"`)
		}
	}

	return spec, true
}

func matchToken(offer string, spec acceptSpec) (int, bool) {
	switch {
	case strings.EqualFold(spec.value, offer):
		return 1, true
	case spec.value == "*":
		return 0, true
	default:
		return 0, false
	}
}

func matchLanguage(offer string, spec acceptSpec) (int, bool) {
	o, ok := parseLanguage(offer)
	if !ok {
		return 0, false
	}

	switch {
	case strings.EqualFold(spec.value, o.value):
		return 4, true
	case strings.EqualFold(spec.typ, o.value):
		return 2, true
	case strings.EqualFold(spec.value, o.typ):
		return 1, true
	case spec.value == "*":
		return 0, true
	default:
		return 0, false
	}
}

// preferredOffers orders the acceptable offers by quality, then specificity, then the order of the client's
// specs, then the order of the offers.
func preferredOffers(specs []acceptSpec, offers []string, match func(string, acceptSpec) (int, bool)) []string {
	prios := make([]priority, 0, len(offers))
	for i, offer := range offers {
		best := priority{i: i, o: -1}
		for _, spec := range specs {
			s, ok := match(offer, spec)
			if !ok {
				continue
			}

			cand := priority{i: i, o: spec.i, s: s, q: spec.q}
			if cmp.Or(cmp.Compare(best.s, cand.s), cmp.Compare(best.q, cand.q), cmp.Compare(best.o, cand.o)) < 0 {
				best = cand
			}
		}

		if best.q > 0 {
			prios = append(prios, best)
		}
	}

	slices.SortStableFunc(prios, func(a, b priority) int {
		return cmp.Or(
			cmp.Compare(b.q, a.q),
			cmp.Compare(b.s, a.s),
			cmp.Compare(a.o, b.o),
			cmp.Compare(a.i, b.i),
		)
	})

	out := make([]string, len(prios))
	for n, p := range prios {
		out[n] = offers[p.i]
	}
	return out
}

// ranked returns the acceptable spec values sorted by quality, keeping the header order for ties.
func ranked(specs []acceptSpec) []string {
	acceptable := slices.DeleteFunc(slices.Clone(specs), func(s acceptSpec) bool { return s.q <= 0 })
	slices.SortStableFunc(acceptable, func(a, b acceptSpec) int {
		return cmp.Compare(b.q, a.q)
	})

	out := make([]string, len(acceptable))
	for n, s := range acceptable {
		out[n] = s.value
	}
	return out
}

// splitQuoted splits s on sep, ignoring separators inside double quotes.
func splitQuoted(s string, sep byte) []string {
	var (
		parts  []string
		quoted bool
		start  int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, s[start:])
}
