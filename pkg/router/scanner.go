package router

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file extensions treated as route files.
var DefaultExtensions = []string{".vue", ".tsx", ".ts", ".jsx", ".js", ".go"}

// DefaultIgnorePrefix marks private files and directories that are never
// routes (helpers, partials, _layout files).
const DefaultIgnorePrefix = "_"

// ScannerOption configures a Scanner or EndpointScanner.
type ScannerOption func(*scanOptions)

type scanOptions struct {
	extensions   []string
	ignorePrefix string
	logger       *slog.Logger
}

// WithExtensions sets the file extensions considered route files.
func WithExtensions(exts ...string) ScannerOption {
	return func(o *scanOptions) {
		o.extensions = nil
		for _, ext := range exts {
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			o.extensions = append(o.extensions, strings.ToLower(ext))
		}
	}
}

// WithIgnorePrefix sets the leading character sequence that excludes a file
// or directory from scanning.
func WithIgnorePrefix(prefix string) ScannerOption {
	return func(o *scanOptions) {
		o.ignorePrefix = prefix
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(o *scanOptions) {
		o.logger = logger
	}
}

func newScanOptions(opts []ScannerOption) scanOptions {
	o := scanOptions{
		extensions:   DefaultExtensions,
		ignorePrefix: DefaultIgnorePrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Scanner scans a directory for page route files.
type Scanner struct {
	rootDir string
	opts    scanOptions
}

// NewScanner creates a new page route scanner rooted at rootDir.
func NewScanner(rootDir string, opts ...ScannerOption) *Scanner {
	return &Scanner{
		rootDir: rootDir,
		opts:    newScanOptions(opts),
	}
}

// Scan walks the root directory and returns one flat, unsorted Route per
// accepted file. A missing root directory yields no routes and no error.
func (s *Scanner) Scan(ctx context.Context) ([]Route, error) {
	root, err := filepath.Abs(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", s.rootDir, err)
	}

	var routes []Route
	err = walkRouteFiles(ctx, root, s.opts, func(path, rel string) {
		routes = append(routes, newRoute(path, rel))
	})
	if err != nil {
		return nil, err
	}

	s.opts.logger.Debug("scanned page routes", "dir", root, "routes", len(routes))
	return routes, nil
}

// ScanPages scans dir and builds the nested, sorted page tree.
func ScanPages(ctx context.Context, dir string, opts ...ScannerOption) ([]Route, error) {
	flat, err := NewScanner(dir, opts...).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

// newRoute derives a Route from a file path relative to the scan root.
func newRoute(path, rel string) Route {
	segments, index := fileSegments(rel)
	return Route{
		Pattern:    FormatPattern(segments),
		SourcePath: path,
		IsDynamic:  hasParam(segments),
		Params:     paramNames(segments),
		Index:      index,
		Segments:   segments,
	}
}

// fileSegments converts a relative file path into pattern segments and
// reports whether the file is an index file.
//
//	index.vue           → /
//	about.vue           → /about
//	users/index.vue     → /users
//	users/[id].vue      → /users/:id
//	docs/[...slug].vue  → /docs/:slug+
func fileSegments(rel string) ([]Segment, bool) {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	parts := strings.Split(rel, "/")
	index := parts[len(parts)-1] == "index"
	if index {
		parts = parts[:len(parts)-1]
	}

	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, ParseFileSegment(part))
	}
	return segments, index
}

// walkRouteFiles calls fn for every route file under root. Ignored
// directories are skipped entirely. A missing root is not an error.
func walkRouteFiles(ctx context.Context, root string, opts scanOptions, fn func(path, rel string)) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path == root {
			return nil
		}

		name := d.Name()
		if isIgnoredName(name, opts.ignorePrefix) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories
		if d.IsDir() {
			return nil
		}

		if !hasRouteExtension(name, opts.extensions) || isTestFile(name) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		fn(path, rel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", root, err)
	}
	return nil
}

// IsRouteFile reports whether rel, a slash or OS separated path relative to
// a scan root, names a file the scanners would accept.
func IsRouteFile(rel string, opts ...ScannerOption) bool {
	o := newScanOptions(opts)
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." || isIgnoredName(part, o.ignorePrefix) {
			return false
		}
	}
	name := parts[len(parts)-1]
	return hasRouteExtension(name, o.extensions) && !isTestFile(name)
}

// isIgnoredName reports whether a file or directory name is private.
// Hidden entries are always ignored.
func isIgnoredName(name, prefix string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return prefix != "" && strings.HasPrefix(name, prefix)
}

func hasRouteExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// isTestFile reports whether name is a test or declaration file.
func isTestFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "_test.go") || strings.HasSuffix(lower, ".d.ts") {
		return true
	}
	base := strings.TrimSuffix(lower, filepath.Ext(lower))
	return strings.HasSuffix(base, ".test") || strings.HasSuffix(base, ".spec")
}
