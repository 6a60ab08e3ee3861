package router

import (
	"sort"
	"strings"
)

// Precedence penalties per segment kind. Positions are added so that a
// parameter earlier in the pattern ranks below one that appears later.
const (
	dynamicPenalty          = 100
	catchAllPenalty         = 10000
	optionalCatchAllPenalty = 20000
)

// BuildTree nests a flat route list and sorts every level by precedence.
//
// A non-index route hosts as children the routes exactly one segment below
// its pattern plus an index route at its own pattern (which becomes the
// relative child ""). Children get relative patterns and segments but keep
// the parameters of their full pattern. The flat input is not modified.
func BuildTree(flat []Route) []Route {
	parent := make([]int, len(flat))
	for i := range parent {
		parent[i] = -1
	}
	children := make(map[int][]int)
	segs := make([][]Segment, len(flat))
	for i := range flat {
		segs[i] = segmentsOf(&flat[i])
	}

	// Claims follow input order; the first eligible candidate wins.
	for p := range flat {
		if flat[p].Index {
			continue
		}
		for c := range flat {
			if c == p || parent[c] != -1 || isAncestor(c, p, parent) {
				continue
			}
			if isDirectChild(flat[c].Pattern, flat[p].Pattern) {
				parent[c] = p
				children[p] = append(children[p], c)
			}
		}
	}

	var build func(i, depth int) Route
	build = func(i, depth int) Route {
		src := flat[i]
		segments := segs[i][depth:]

		r := Route{
			Pattern:    src.Pattern,
			SourcePath: src.SourcePath,
			IsDynamic:  hasParam(segs[i]),
			Params:     paramNames(segs[i]),
			Index:      src.Index,
			Segments:   segments,
		}
		if depth > 0 {
			r.Pattern = joinTokens(segments)
		}

		if kids := children[i]; len(kids) > 0 {
			r.Children = make([]Route, 0, len(kids))
			for _, c := range kids {
				r.Children = append(r.Children, build(c, len(segs[i])))
			}
			SortRoutes(r.Children)
		}
		return r
	}

	top := make([]Route, 0, len(flat))
	for i := range flat {
		if parent[i] == -1 {
			top = append(top, build(i, 0))
		}
	}
	SortRoutes(top)
	return top
}

// isDirectChild reports whether child sits exactly one segment below
// parent, or collides with it.
func isDirectChild(child, parent string) bool {
	if child == parent {
		return true
	}
	prefix := parent + "/"
	if parent == "/" {
		prefix = "/"
	}
	if !strings.HasPrefix(child, prefix) {
		return false
	}
	rest := child[len(prefix):]
	return rest != "" && !strings.Contains(rest, "/")
}

func isAncestor(c, p int, parent []int) bool {
	for x := p; x != -1; x = parent[x] {
		if x == c {
			return true
		}
	}
	return false
}

// Score returns the precedence score of a pattern. Lower scores match first.
func Score(segments []Segment) int {
	score := 0
	for pos, s := range segments {
		switch s.Kind {
		case Dynamic:
			score += dynamicPenalty + pos
		case CatchAll:
			score += catchAllPenalty + pos
		case OptionalCatchAll:
			score += optionalCatchAllPenalty + pos
		}
	}
	return score
}

// SortRoutes orders routes by precedence score, breaking ties by pattern.
// Only the given level is sorted; children are sorted by BuildTree.
func SortRoutes(routes []Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		si, sj := Score(segmentsOf(&routes[i])), Score(segmentsOf(&routes[j]))
		if si != sj {
			return si < sj
		}
		return routes[i].Pattern < routes[j].Pattern
	})
}

// Walk visits every route depth-first in table order. fn receives the
// route's absolute pattern and its ancestors, outermost first.
func Walk(routes []Route, fn func(r *Route, pattern string, chain []*Route)) {
	walk(routes, nil, nil, fn)
}

func walk(routes []Route, prefix []Segment, chain []*Route, fn func(*Route, string, []*Route)) {
	for i := range routes {
		r := &routes[i]
		abs := concatSegments(prefix, segmentsOf(r))
		fn(r, FormatPattern(abs), chain)
		if r.HasChildren() {
			walk(r.Children, abs, appendChain(chain, r), fn)
		}
	}
}

// segmentsOf returns the classified segments of r, parsing the pattern when
// the route was built by hand without them.
func segmentsOf(r *Route) []Segment {
	if r.Segments != nil {
		return r.Segments
	}
	return ParsePattern(r.Pattern)
}

func concatSegments(prefix, rest []Segment) []Segment {
	out := make([]Segment, 0, len(prefix)+len(rest))
	out = append(out, prefix...)
	return append(out, rest...)
}

func appendChain(chain []*Route, r *Route) []*Route {
	out := make([]*Route, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, r)
}
