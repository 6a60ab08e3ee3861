// Package routepath normalizes request paths before they are matched against
// a route table.
//
// Normalization is lenient: it never fails. A path with a malformed percent
// escape is matched in its raw form instead of being rejected.
package routepath

import (
	"net/url"
	"strings"
)

// Normalize prepares a raw request URL or path for matching.
//
// The query string (and fragment) is dropped, a single trailing slash is
// removed unless the path is exactly "/", and the remainder is percent-decoded.
// If decoding fails the undecoded path is returned.
func Normalize(raw string) string {
	path, _ := SplitPathAndQuery(raw)
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}

	if path != "/" && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	decoded, err := url.PathUnescape(path)
	if err != nil {
		return path
	}
	return decoded
}

// SplitPathAndQuery splits a path into path and query components.
// The query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// SplitSegments returns the non-empty "/"-separated segments of path.
func SplitSegments(path string) []string {
	if path == "" {
		return nil
	}

	n := 1
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			n++
		}
	}

	segments := make([]string, 0, n)
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	return segments
}
