package router

import (
	"reflect"
	"strings"
	"testing"
)

func findingTypes(errs []ValidationError) []ValidationErrorType {
	types := make([]ValidationErrorType, len(errs))
	for i, e := range errs {
		types[i] = e.Type
	}
	return types
}

func TestValidatorClean(t *testing.T) {
	pages := BuildTree(flatRoutes("index.vue", "users.vue", "users/index.vue", "users/[id].vue"))
	endpoints := []EndpointRoute{
		endpoint("/api/users", "get"),
		endpoint("/api/users", "post"),
	}

	v := NewValidator(pages, endpoints)
	if errs := v.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want none", errs)
	}
	if err := v.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestValidatorDuplicatePage(t *testing.T) {
	pages := BuildTree(flatRoutes("about/index.vue", "about/index.tsx"))

	errs := Validate(pages, nil)
	if len(errs) != 1 || errs[0].Type != ErrorDuplicateRoute {
		t.Fatalf("Validate() = %v, want one DUPLICATE_ROUTE", findingTypes(errs))
	}
	if errs[0].Pattern != "/about" || len(errs[0].Files) != 2 {
		t.Errorf("finding = %+v", errs[0])
	}
}

func TestValidatorAmbiguousNesting(t *testing.T) {
	pages := BuildTree(flatRoutes("users.vue", "users.tsx", "users/[id].vue"))

	errs := Validate(pages, nil)
	if len(errs) != 1 || errs[0].Type != ErrorAmbiguousNesting {
		t.Fatalf("Validate() = %v, want one AMBIGUOUS_NESTING", findingTypes(errs))
	}
}

func TestValidatorIndexNestedOutsideHost(t *testing.T) {
	pages := BuildTree(flatRoutes("users.vue", "users/[id].vue", "users/[id]/index.vue"))

	errs := Validate(pages, nil)
	if len(errs) != 1 || errs[0].Type != ErrorAmbiguousNesting {
		t.Fatalf("Validate() = %v, want one AMBIGUOUS_NESTING", findingTypes(errs))
	}
	if errs[0].Pattern != "/users/:id" {
		t.Errorf("pattern = %q, want /users/:id", errs[0].Pattern)
	}
	want := []string{
		"/app/pages/users/[id]/index.vue",
		"/app/pages/users/[id].vue",
		"/app/pages/users.vue",
	}
	if !reflect.DeepEqual(errs[0].Files, want) {
		t.Errorf("files = %v, want %v", errs[0].Files, want)
	}

	// Scan order puts the deeper candidate first, so the index nests under
	// its own file and nothing is reported.
	pages = BuildTree(flatRoutes("users/[id]/index.vue", "users/[id].vue", "users.vue"))
	if errs := Validate(pages, nil); len(errs) != 0 {
		t.Errorf("Validate() = %v, want none", findingTypes(errs))
	}
}

func TestValidatorDuplicateEndpoint(t *testing.T) {
	endpoints := []EndpointRoute{
		endpoint("/api/users", "get"),
		endpoint("/api/users", "get"),
		endpoint("/api/users", ""),
	}

	errs := Validate(nil, endpoints)
	if len(errs) != 1 || errs[0].Type != ErrorDuplicateEndpoint {
		t.Fatalf("Validate() = %v, want one DUPLICATE_ENDPOINT", findingTypes(errs))
	}
	if !strings.Contains(errs[0].Message, "GET") {
		t.Errorf("message %q should name the method", errs[0].Message)
	}
}

func TestValidatorSegments(t *testing.T) {
	pages := BuildTree(flatRoutes("[...slug]/edit.vue", "[id]/[id].vue"))

	errs := Validate(pages, nil)
	got := findingTypes(errs)
	if len(got) != 2 {
		t.Fatalf("Validate() = %v, want two findings", got)
	}

	seen := map[ValidationErrorType]bool{}
	for _, typ := range got {
		seen[typ] = true
	}
	if !seen[ErrorCatchAllNotLast] || !seen[ErrorDuplicateParam] {
		t.Errorf("findings = %v, want CATCH_ALL_NOT_LAST and DUPLICATE_PARAM", got)
	}
}

func TestMultiValidationError(t *testing.T) {
	err := &MultiValidationError{Errors: []ValidationError{
		{Type: ErrorDuplicateRoute, Message: "a"},
		{Type: ErrorDuplicateParam, Message: "b"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 route validation errors") {
		t.Errorf("Error() = %q", msg)
	}

	single := &MultiValidationError{Errors: err.Errors[:1]}
	if got := single.Error(); got != "DUPLICATE_ROUTE: a" {
		t.Errorf("single Error() = %q", got)
	}
}

func TestFormatValidationError(t *testing.T) {
	out := FormatValidationError(ValidationError{
		Type:    ErrorDuplicateRoute,
		Message: "Duplicate route detected at /about",
		Pattern: "/about",
		Files:   []string{"/app/pages/about.vue", "/app/pages/about.tsx"},
		Details: "Files: x",
	})

	for _, want := range []string{
		"ERROR: Duplicate route detected at /about",
		"/app/pages/about.vue → /about",
		"/app/pages/about.tsx → /about",
		"Details: Files: x",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
