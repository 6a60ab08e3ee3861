package router

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vango-dev/fsroutes/pkg/routepath"
)

// EndpointKind identifies one of the two conventional endpoint roots.
type EndpointKind int

const (
	// EndpointAPI endpoints live under server/api and are served below /api.
	EndpointAPI EndpointKind = iota

	// EndpointRoutes endpoints live under server/routes and are served from
	// the site root.
	EndpointRoutes
)

// EndpointKinds lists every endpoint kind in scan order.
var EndpointKinds = []EndpointKind{EndpointAPI, EndpointRoutes}

// Dir returns the conventional directory of the kind, relative to the
// project root.
func (k EndpointKind) Dir() string {
	if k == EndpointRoutes {
		return "server/routes"
	}
	return "server/api"
}

// Prefix returns the URL prefix endpoints of this kind are served under.
func (k EndpointKind) Prefix() string {
	if k == EndpointRoutes {
		return ""
	}
	return "/api"
}

// String returns "api" or "routes".
func (k EndpointKind) String() string {
	if k == EndpointRoutes {
		return "routes"
	}
	return "api"
}

// MarshalText implements encoding.TextMarshaler.
func (k EndpointKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EndpointKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "api":
		*k = EndpointAPI
	case "routes":
		*k = EndpointRoutes
	default:
		return fmt.Errorf("unknown endpoint kind %q", text)
	}
	return nil
}

// httpMethods are the verbs recognized as a filename method suffix.
var httpMethods = map[string]bool{
	"get":     true,
	"head":    true,
	"post":    true,
	"put":     true,
	"patch":   true,
	"delete":  true,
	"options": true,
	"connect": true,
	"trace":   true,
}

// ExtractMethod returns the lowercase HTTP verb encoded in a filename
// ("users.get.ts" → "get"), or "" when there is none.
func ExtractMethod(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	_, method := splitMethod(base)
	return method
}

// splitMethod strips a recognized trailing ".verb" from an extension-less
// file name.
func splitMethod(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	verb := strings.ToLower(name[i+1:])
	if !httpMethods[verb] {
		return name, ""
	}
	return name[:i], verb
}

// DeriveEndpointPattern converts a file path relative to the project root
// into an endpoint URL pattern:
//
//	server/api/users/index.get.ts   → /api/users
//	server/api/users/[id].ts        → /api/users/:id
//	server/routes/files/[...path].ts → /files/:path+
//	server/routes/index.ts          → /
func DeriveEndpointPattern(relPath string, kind EndpointKind) string {
	return FormatEndpointPattern(endpointSegments(relPath, kind), kind)
}

// FormatEndpointPattern renders endpoint segments under the kind's prefix.
func FormatEndpointPattern(segments []Segment, kind EndpointKind) string {
	if len(segments) == 0 {
		if kind.Prefix() == "" {
			return "/"
		}
		return kind.Prefix()
	}
	return kind.Prefix() + "/" + joinTokens(segments)
}

// endpointSegments returns the pattern segments, without the kind prefix,
// for an endpoint file.
func endpointSegments(relPath string, kind EndpointKind) []Segment {
	rel := filepath.ToSlash(relPath)
	rel = strings.TrimPrefix(rel, "./")
	rel = strings.TrimPrefix(rel, kind.Dir()+"/")
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	parts := strings.Split(rel, "/")
	last := len(parts) - 1
	parts[last], _ = splitMethod(parts[last])
	if parts[last] == "index" {
		parts = parts[:last]
	}

	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, parseEndpointSegment(part))
	}
	return segments
}

// EndpointScanner scans the endpoint directories of a project.
type EndpointScanner struct {
	projectRoot string
	dirs        map[EndpointKind]string
	opts        scanOptions
}

// NewEndpointScanner creates a scanner for the endpoint directories below
// projectRoot.
func NewEndpointScanner(projectRoot string, opts ...ScannerOption) *EndpointScanner {
	return &EndpointScanner{
		projectRoot: projectRoot,
		dirs:        make(map[EndpointKind]string),
		opts:        newScanOptions(opts),
	}
}

// SetDir overrides the directory scanned for kind. Relative paths resolve
// against the project root.
func (s *EndpointScanner) SetDir(kind EndpointKind, dir string) {
	s.dirs[kind] = dir
}

// DirFor returns the absolute directory scanned for kind.
func (s *EndpointScanner) DirFor(kind EndpointKind) string {
	dir, ok := s.dirs[kind]
	if !ok {
		dir = filepath.FromSlash(kind.Dir())
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	root, err := filepath.Abs(s.projectRoot)
	if err != nil {
		root = s.projectRoot
	}
	return filepath.Join(root, dir)
}

// Scan returns one EndpointRoute per endpoint file, sorted by precedence.
// Missing endpoint directories contribute no routes.
func (s *EndpointScanner) Scan(ctx context.Context) ([]EndpointRoute, error) {
	var routes []EndpointRoute
	for _, kind := range EndpointKinds {
		dir := s.DirFor(kind)
		err := walkRouteFiles(ctx, dir, s.opts, func(path, rel string) {
			segments := endpointSegments(rel, kind)
			routes = append(routes, EndpointRoute{
				Pattern:    FormatEndpointPattern(segments, kind),
				SourcePath: path,
				Method:     ExtractMethod(rel),
				Kind:       kind,
				Segments:   prefixSegments(kind, segments),
			})
		})
		if err != nil {
			return nil, err
		}
	}

	SortEndpoints(routes)
	s.opts.logger.Debug("scanned endpoint routes", "root", s.projectRoot, "routes", len(routes))
	return routes, nil
}

// prefixSegments prepends the kind's URL prefix so matching can walk the
// full path.
func prefixSegments(kind EndpointKind, segments []Segment) []Segment {
	prefix := ParsePattern(kind.Prefix())
	return concatSegments(prefix, segments)
}

// SortEndpoints orders endpoint routes by precedence, then pattern, with
// method-specific records before catch-any records.
func SortEndpoints(routes []EndpointRoute) {
	sort.SliceStable(routes, func(i, j int) bool {
		si, sj := Score(endpointSegmentsOf(&routes[i])), Score(endpointSegmentsOf(&routes[j]))
		if si != sj {
			return si < sj
		}
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		if (routes[i].Method == "") != (routes[j].Method == "") {
			return routes[i].Method != ""
		}
		return routes[i].Method < routes[j].Method
	})
}

func endpointSegmentsOf(r *EndpointRoute) []Segment {
	if r.Segments != nil {
		return r.Segments
	}
	return ParsePattern(r.Pattern)
}

// MatchEndpoint finds the first endpoint route matching pathname and
// method. Routes with a recorded method only match that method
// (case-insensitively); routes without one match any method.
func MatchEndpoint(pathname, method string, routes []EndpointRoute) (*EndpointMatch, bool) {
	url := routepath.SplitSegments(routepath.Normalize(pathname))
	method = strings.ToLower(method)

	for i := range routes {
		r := &routes[i]
		if r.Method != "" && r.Method != method {
			continue
		}
		if params, ok := matchEndpointSegments(endpointSegmentsOf(r), url); ok {
			return &EndpointMatch{Route: r, Params: params}, true
		}
	}
	return nil, false
}

// AllowedMethods returns the uppercase methods registered for pathname,
// sorted. It returns nil when any method is accepted or nothing matches.
func AllowedMethods(pathname string, routes []EndpointRoute) []string {
	url := routepath.SplitSegments(routepath.Normalize(pathname))

	seen := make(map[string]bool)
	for i := range routes {
		r := &routes[i]
		if _, ok := matchEndpointSegments(endpointSegmentsOf(r), url); !ok {
			continue
		}
		if r.Method == "" {
			return nil
		}
		seen[strings.ToUpper(r.Method)] = true
	}

	if len(seen) == 0 {
		return nil
	}
	methods := make([]string, 0, len(seen))
	for m := range seen {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// matchEndpointSegments is matchSegments with catch-alls bound as a single
// slash-joined string.
func matchEndpointSegments(pattern []Segment, url []string) (map[string]string, bool) {
	params := make(map[string]string)
	for i, seg := range pattern {
		switch seg.Kind {
		case CatchAll:
			if i >= len(url) {
				return nil, false
			}
			params[seg.Value] = strings.Join(url[i:], "/")
			return params, true

		case OptionalCatchAll:
			params[seg.Value] = strings.Join(url[min(i, len(url)):], "/")
			return params, true

		case Dynamic:
			if i >= len(url) {
				return nil, false
			}
			params[seg.Value] = url[i]

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
