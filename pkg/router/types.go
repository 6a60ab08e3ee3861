package router

import (
	"encoding/json"
	"strings"
)

// Route is a page route discovered by the scanner.
//
// Top-level routes carry absolute patterns ("/users/:id"). Routes nested under
// a parent carry patterns relative to it (":id"); the empty pattern is the
// parent's own index child.
type Route struct {
	// Pattern is the URL pattern with tokens :name, :name+ and :name*.
	Pattern string `json:"pattern"`

	// SourcePath is the absolute path of the route file.
	SourcePath string `json:"sourcePath"`

	// IsDynamic reports whether the pattern binds any parameter.
	IsDynamic bool `json:"isDynamic"`

	// Params are the parameter names in pattern order.
	Params []string `json:"params"`

	// Children are the nested routes, sorted by precedence.
	Children []Route `json:"children,omitempty"`

	// Index reports whether the source file is an index file. Index files
	// never host children.
	Index bool `json:"-"`

	// Segments is Pattern classified once at scan time.
	Segments []Segment `json:"-"`
}

// HasChildren reports whether the route hosts nested routes.
func (r *Route) HasChildren() bool {
	return len(r.Children) > 0
}

// Value is a bound route parameter. Dynamic segments bind Scalar; catch-all
// segments bind List.
type Value struct {
	Scalar string
	List   []string
	IsList bool
}

// String returns the scalar value, or the list joined by "/".
func (v Value) String() string {
	if !v.IsList {
		return v.Scalar
	}
	return strings.Join(v.List, "/")
}

// MarshalJSON encodes scalars as strings and catch-alls as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Scalar)
}

// Params maps parameter names to bound values.
type Params map[string]Value

// Get returns the scalar value of a parameter, or the joined list for
// catch-alls.
func (p Params) Get(name string) string {
	return p[name].String()
}

// List returns the segments bound to a catch-all parameter.
func (p Params) List(name string) []string {
	return p[name].List
}

// PageMatch is the result of matching a URL against the page tree.
//
// Route and Chain are copies of the table records, so editing them leaves
// the table intact. Their Children slices are shallow copies and the routes
// below them are still the table's own.
type PageMatch struct {
	// Route is the matched route record.
	Route *Route

	// Chain holds the ancestors of Route, outermost first.
	Chain []*Route

	// Pattern is the absolute pattern of the matched route.
	Pattern string

	// Params are the extracted parameters.
	Params Params
}

// EndpointRoute is a server endpoint discovered by the endpoint scanner.
// Endpoint routes are flat; one record exists per file.
type EndpointRoute struct {
	// Pattern is the URL pattern with tokens :name and :name+.
	Pattern string `json:"pattern"`

	// SourcePath is the absolute path of the handler file.
	SourcePath string `json:"sourcePath"`

	// Method is the lowercase HTTP verb from the filename, or "" for any
	// method.
	Method string `json:"method,omitempty"`

	// Kind is the endpoint root the file was found under.
	Kind EndpointKind `json:"kind"`

	// Segments is Pattern classified once at scan time.
	Segments []Segment `json:"-"`
}

// EndpointMatch is the result of matching a request against endpoint routes.
type EndpointMatch struct {
	Route *EndpointRoute

	// Params are the extracted parameters. Catch-alls bind the remaining
	// path joined by "/".
	Params map[string]string
}
