package router

import (
	"fmt"
	"sort"
	"strings"
)

// Validator reports route table problems. Validation never blocks scanning;
// the route table is still usable and the findings are diagnostics.
type Validator struct {
	pages     []Route
	endpoints []EndpointRoute
	errors    []ValidationError
}

// ValidationError represents a route validation finding.
type ValidationError struct {
	// Type is the finding category
	Type ValidationErrorType

	// Message is the human-readable message
	Message string

	// Files are the source files involved
	Files []string

	// Pattern is the URL pattern concerned
	Pattern string

	// Details contains additional finding-specific information
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ValidationErrorType categorizes validation findings.
type ValidationErrorType string

const (
	// ErrorDuplicateRoute indicates multiple page files resolve to the same
	// pattern, e.g. about.vue and about.tsx.
	ErrorDuplicateRoute ValidationErrorType = "DUPLICATE_ROUTE"

	// ErrorDuplicateEndpoint indicates multiple endpoint files serve the
	// same pattern and method.
	ErrorDuplicateEndpoint ValidationErrorType = "DUPLICATE_ENDPOINT"

	// ErrorCatchAllNotLast indicates a catch-all segment followed by more
	// segments, e.g. [...slug]/edit.vue. Matching stops at the catch-all.
	ErrorCatchAllNotLast ValidationErrorType = "CATCH_ALL_NOT_LAST"

	// ErrorDuplicateParam indicates a parameter name bound twice in one
	// pattern, e.g. [id]/[id].vue.
	ErrorDuplicateParam ValidationErrorType = "DUPLICATE_PARAM"

	// ErrorAmbiguousNesting indicates a route eligible for more than one
	// parent: several non-index files at the same pattern, or an index file
	// claimed one level up instead of by the file at its own pattern. The
	// first candidate in scan order won.
	ErrorAmbiguousNesting ValidationErrorType = "AMBIGUOUS_NESTING"
)

// MultiValidationError wraps multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// NewValidator creates a validator over a page tree (as returned by
// BuildTree) and a flat endpoint list.
func NewValidator(pages []Route, endpoints []EndpointRoute) *Validator {
	return &Validator{
		pages:     pages,
		endpoints: endpoints,
	}
}

// Validate runs every check and returns the findings sorted by pattern.
func (v *Validator) Validate() []ValidationError {
	v.errors = nil

	v.validateDuplicatePages()
	v.validateNesting()
	v.validateDuplicateEndpoints()
	v.validateSegments()

	sort.SliceStable(v.errors, func(i, j int) bool {
		if v.errors[i].Pattern != v.errors[j].Pattern {
			return v.errors[i].Pattern < v.errors[j].Pattern
		}
		return v.errors[i].Type < v.errors[j].Type
	})
	return v.errors
}

// Err returns the findings as a *MultiValidationError, or nil.
func (v *Validator) Err() error {
	if errs := v.Validate(); len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}

// Validate is a shorthand for NewValidator(pages, endpoints).Validate().
func Validate(pages []Route, endpoints []EndpointRoute) []ValidationError {
	return NewValidator(pages, endpoints).Validate()
}

// validateDuplicatePages groups pages by absolute pattern. A parent and its
// index child share a pattern legitimately; any other collision is reported.
func (v *Validator) validateDuplicatePages() {
	type entry struct {
		file  string
		index bool
	}
	byPattern := make(map[string][]entry)
	var order []string

	Walk(v.pages, func(r *Route, pattern string, _ []*Route) {
		if _, ok := byPattern[pattern]; !ok {
			order = append(order, pattern)
		}
		byPattern[pattern] = append(byPattern[pattern], entry{file: r.SourcePath, index: r.Index})
	})

	for _, pattern := range order {
		entries := byPattern[pattern]
		var indexes, others []string
		for _, e := range entries {
			if e.index {
				indexes = append(indexes, e.file)
			} else {
				others = append(others, e.file)
			}
		}
		if len(indexes) <= 1 && len(others) <= 1 {
			continue
		}

		files := append(others, indexes...)
		typ := ErrorDuplicateRoute
		msg := fmt.Sprintf("Duplicate route detected at %s", pattern)
		if len(others) > 1 {
			typ = ErrorAmbiguousNesting
			msg = fmt.Sprintf("Several non-index files resolve to %s; the first in scan order hosts the others", pattern)
		}
		v.errors = append(v.errors, ValidationError{
			Type:    typ,
			Message: msg,
			Pattern: pattern,
			Files:   files,
			Details: fmt.Sprintf("Files: %s", strings.Join(files, ", ")),
		})
	}
}

// validateNesting reports index routes that collide with a non-index file
// at their own pattern but were nested under another parent, which happens
// when a shallower candidate comes first in input order. Collisions between
// non-index files are reported by validateDuplicatePages.
func (v *Validator) validateNesting() {
	hosts := make(map[string][]string)
	Walk(v.pages, func(r *Route, pattern string, _ []*Route) {
		if !r.Index {
			hosts[pattern] = append(hosts[pattern], r.SourcePath)
		}
	})

	abs := make(map[*Route]string)
	Walk(v.pages, func(r *Route, pattern string, chain []*Route) {
		abs[r] = pattern
		if !r.Index {
			return
		}

		var own []string
		for _, file := range hosts[pattern] {
			if file != r.SourcePath {
				own = append(own, file)
			}
		}
		if len(own) == 0 {
			return
		}

		parentPattern, parentFile := "", ""
		if len(chain) > 0 {
			parent := chain[len(chain)-1]
			parentPattern, parentFile = abs[parent], parent.SourcePath
		}
		if parentPattern == pattern {
			return
		}

		files := append([]string{r.SourcePath}, own...)
		if parentFile != "" {
			files = append(files, parentFile)
		}
		v.errors = append(v.errors, ValidationError{
			Type:    ErrorAmbiguousNesting,
			Message: fmt.Sprintf("%s is nested outside the file at its own pattern %s", r.SourcePath, pattern),
			Pattern: pattern,
			Files:   files,
			Details: "Several parents were eligible; the first in input order won",
		})
	})
}

// validateDuplicateEndpoints checks for endpoint files serving the same
// pattern and method.
func (v *Validator) validateDuplicateEndpoints() {
	type key struct {
		pattern string
		method  string
	}
	byKey := make(map[key][]string)
	var order []key

	for _, r := range v.endpoints {
		k := key{pattern: r.Pattern, method: r.Method}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], r.SourcePath)
	}

	for _, k := range order {
		files := byKey[k]
		if len(files) <= 1 {
			continue
		}
		method := strings.ToUpper(k.method)
		if method == "" {
			method = "any method"
		}
		v.errors = append(v.errors, ValidationError{
			Type:    ErrorDuplicateEndpoint,
			Message: fmt.Sprintf("Duplicate endpoint detected at %s for %s", k.pattern, method),
			Pattern: k.pattern,
			Files:   files,
			Details: fmt.Sprintf("Files: %s", strings.Join(files, ", ")),
		})
	}
}

// validateSegments checks catch-all placement and repeated parameter names
// on the absolute pattern of every route.
func (v *Validator) validateSegments() {
	check := func(file, pattern string, segments []Segment) {
		seen := make(map[string]bool)
		for i, s := range segments {
			if s.IsCatchAll() && i != len(segments)-1 {
				v.errors = append(v.errors, ValidationError{
					Type:    ErrorCatchAllNotLast,
					Message: fmt.Sprintf("Catch-all %q must be the last segment of %s", s.Value, pattern),
					Pattern: pattern,
					Files:   []string{file},
					Details: "Segments after a catch-all are never matched",
				})
			}
			if !s.IsParam() {
				continue
			}
			if seen[s.Value] {
				v.errors = append(v.errors, ValidationError{
					Type:    ErrorDuplicateParam,
					Message: fmt.Sprintf("Parameter %q is bound more than once in %s", s.Value, pattern),
					Pattern: pattern,
					Files:   []string{file},
				})
			}
			seen[s.Value] = true
		}
	}

	Walk(v.pages, func(r *Route, pattern string, _ []*Route) {
		check(r.SourcePath, pattern, ParsePattern(pattern))
	})
	for i := range v.endpoints {
		r := &v.endpoints[i]
		check(r.SourcePath, r.Pattern, endpointSegmentsOf(r))
	}
}

// FormatValidationError formats a validation error for display:
//
//	ERROR: Duplicate route detected at /about
//	  /app/pages/about.vue → /about
//	  /app/pages/about.tsx → /about
func FormatValidationError(err ValidationError) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ERROR: %s\n", err.Message))

	for _, file := range err.Files {
		sb.WriteString(fmt.Sprintf("  %s → %s\n", file, err.Pattern))
	}

	if err.Details != "" {
		sb.WriteString(fmt.Sprintf("  Details: %s\n", err.Details))
	}

	return sb.String()
}
