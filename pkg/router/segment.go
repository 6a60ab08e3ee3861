package router

import "strings"

// SegmentKind classifies one segment of a route pattern.
type SegmentKind int

const (
	// Static matches its literal text exactly.
	Static SegmentKind = iota

	// Dynamic binds exactly one path segment: [id] → :id
	Dynamic

	// CatchAll binds one or more trailing segments: [...slug] → :slug+
	CatchAll

	// OptionalCatchAll binds zero or more trailing segments: [[...slug]] → :slug*
	OptionalCatchAll
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case CatchAll:
		return "catch-all"
	case OptionalCatchAll:
		return "optional-catch-all"
	default:
		return "unknown"
	}
}

// Segment is one classified pattern segment. Value holds the literal text
// for static segments and the parameter name otherwise.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// IsParam reports whether the segment binds a parameter.
func (s Segment) IsParam() bool {
	return s.Kind != Static
}

// IsCatchAll reports whether the segment consumes the rest of the path.
func (s Segment) IsCatchAll() bool {
	return s.Kind == CatchAll || s.Kind == OptionalCatchAll
}

// Token renders the segment in pattern notation.
func (s Segment) Token() string {
	switch s.Kind {
	case Dynamic:
		return ":" + s.Value
	case CatchAll:
		return ":" + s.Value + "+"
	case OptionalCatchAll:
		return ":" + s.Value + "*"
	default:
		return s.Value
	}
}

// ParseFileSegment classifies one file or directory name segment:
//
//	[[...name]] → optional catch-all
//	[...name]   → catch-all
//	[name]      → dynamic
//	anything else, including malformed brackets → static
func ParseFileSegment(seg string) Segment {
	if inner, ok := unwrap(seg, "[[...", "]]"); ok && isParamName(inner) {
		return Segment{Kind: OptionalCatchAll, Value: inner}
	}
	if inner, ok := unwrap(seg, "[...", "]"); ok && isParamName(inner) {
		return Segment{Kind: CatchAll, Value: inner}
	}
	if inner, ok := unwrap(seg, "[", "]"); ok && isParamName(inner) {
		return Segment{Kind: Dynamic, Value: inner}
	}
	return Segment{Kind: Static, Value: seg}
}

// parseEndpointSegment is ParseFileSegment without the optional catch-all
// form, which server endpoints do not support.
func parseEndpointSegment(seg string) Segment {
	s := ParseFileSegment(seg)
	if s.Kind == OptionalCatchAll {
		return Segment{Kind: Static, Value: seg}
	}
	return s
}

func unwrap(s, prefix, suffix string) (string, bool) {
	if len(s) < len(prefix)+len(suffix) || !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}

func isParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '$':
		default:
			return false
		}
	}
	return true
}

// ParsePattern parses a pattern in token notation ("/users/:id",
// ":slug+") into segments. A leading slash is optional; "" and "/" yield no
// segments.
func ParsePattern(pattern string) []Segment {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, parseToken(part))
	}
	return segments
}

func parseToken(tok string) Segment {
	if len(tok) < 2 || tok[0] != ':' {
		return Segment{Kind: Static, Value: tok}
	}
	name := tok[1:]
	switch name[len(name)-1] {
	case '+':
		return Segment{Kind: CatchAll, Value: name[:len(name)-1]}
	case '*':
		return Segment{Kind: OptionalCatchAll, Value: name[:len(name)-1]}
	}
	return Segment{Kind: Dynamic, Value: name}
}

// FormatPattern renders segments as an absolute pattern. No segments
// render as "/".
func FormatPattern(segments []Segment) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + joinTokens(segments)
}

// joinTokens renders segments without a leading slash, the form used for
// relative child patterns.
func joinTokens(segments []Segment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(s.Token())
	}
	return b.String()
}

// paramNames returns the ordered parameter names bound by segments.
func paramNames(segments []Segment) []string {
	var names []string
	for _, s := range segments {
		if s.IsParam() {
			names = append(names, s.Value)
		}
	}
	return names
}

func hasParam(segments []Segment) bool {
	for _, s := range segments {
		if s.IsParam() {
			return true
		}
	}
	return false
}
