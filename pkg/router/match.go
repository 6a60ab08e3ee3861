package router

import (
	"slices"

	"github.com/vango-dev/fsroutes/pkg/routepath"
)

// Match resolves a URL against a precedence-sorted page tree.
//
// The URL is normalized first (query dropped, one trailing slash stripped,
// percent-decoded with a raw fallback). Routes are tried in order; for a
// route with children, a matching child wins over the bare parent, and an
// index child wins when the URL is the parent's own path.
func Match(rawURL string, routes []Route) (*PageMatch, bool) {
	path := routepath.Normalize(rawURL)
	return matchLevel(routes, nil, nil, routepath.SplitSegments(path))
}

func matchLevel(routes []Route, prefix []Segment, chain []*Route, url []string) (*PageMatch, bool) {
	for i := range routes {
		r := &routes[i]
		full := concatSegments(prefix, segmentsOf(r))

		if !r.HasChildren() {
			if params, ok := matchSegments(full, url); ok {
				return newPageMatch(r, chain, full, params), true
			}
			continue
		}

		nested := appendChain(chain, r)

		if params, ok := matchSegments(full, url); ok {
			if m, ok := matchLevel(r.Children, full, nested, url); ok {
				return m, true
			}
			return newPageMatch(r, chain, full, params), true
		}

		if len(full) == 0 || hasPrefix(full, url) {
			if m, ok := matchLevel(r.Children, full, nested, url); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func newPageMatch(r *Route, chain []*Route, full []Segment, params Params) *PageMatch {
	ancestors := make([]*Route, len(chain))
	for i, c := range chain {
		ancestors[i] = cloneRoute(c)
	}
	return &PageMatch{
		Route:   cloneRoute(r),
		Chain:   ancestors,
		Pattern: FormatPattern(full),
		Params:  params,
	}
}

// matchSegments walks pattern against the URL segments. Catch-alls end the
// walk and bind the remaining segments; without one, the segment counts
// must be equal.
func matchSegments(pattern []Segment, url []string) (Params, bool) {
	params := make(Params)
	for i, seg := range pattern {
		switch seg.Kind {
		case CatchAll:
			if i >= len(url) {
				return nil, false
			}
			params[seg.Value] = Value{List: copyStrings(url[i:]), IsList: true}
			return params, true

		case OptionalCatchAll:
			params[seg.Value] = Value{List: copyStrings(url[min(i, len(url)):]), IsList: true}
			return params, true

		case Dynamic:
			if i >= len(url) {
				return nil, false
			}
			params[seg.Value] = Value{Scalar: url[i]}

		default:
			if i >= len(url) || url[i] != seg.Value {
				return nil, false
			}
		}
	}

	if len(pattern) != len(url) {
		return nil, false
	}
	return params, true
}

// hasPrefix reports whether the URL continues below pattern, that is the
// URL has more segments and its leading segments match pattern.
func hasPrefix(pattern []Segment, url []string) bool {
	if len(url) <= len(pattern) {
		return false
	}
	for i, seg := range pattern {
		switch seg.Kind {
		case CatchAll, OptionalCatchAll:
			return true
		case Dynamic:
		default:
			if url[i] != seg.Value {
				return false
			}
		}
	}
	return true
}

// cloneRoute copies a route record out of the table. Children are copied one
// level deep; the routes below them stay shared with the table.
func cloneRoute(r *Route) *Route {
	c := *r
	c.Params = slices.Clone(r.Params)
	c.Segments = slices.Clone(r.Segments)
	c.Children = slices.Clone(r.Children)
	return &c
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
