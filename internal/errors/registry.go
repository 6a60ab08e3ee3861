package errors

import (
	"sort"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Routing Diagnostics (R100-R119)
	// ============================================

	"R100": {
		Category: CategoryRouting,
		Message:  "Duplicate route",
		Detail:   "Two page files resolve to the same URL pattern. Only one of them can be matched.",
	},
	"R101": {
		Category: CategoryRouting,
		Message:  "Duplicate endpoint",
		Detail:   "Two endpoint files serve the same URL pattern and HTTP method. Only one of them can be matched.",
	},
	"R102": {
		Category: CategoryRouting,
		Message:  "Catch-all must be the last segment",
		Detail:   "A catch-all segment consumes the rest of the path, so segments after it are never matched.",
	},
	"R103": {
		Category: CategoryRouting,
		Message:  "Duplicate parameter name",
		Detail:   "A parameter name is bound more than once in one pattern. The innermost binding wins.",
	},
	"R104": {
		Category: CategoryRouting,
		Message:  "Ambiguous nesting",
		Detail:   "A route was eligible for more than one parent. The first candidate in scan order hosts it.",
	},
	"R110": {
		Category: CategoryRouting,
		Message:  "Route directory unreadable",
		Detail:   "The route directory exists but could not be read.",
	},

	// ============================================
	// Config Errors (R120-R139)
	// ============================================

	"R120": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No fsroutes.json or fsroutes.yaml was found in the project root.",
	},
	"R121": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The config file could not be parsed.",
	},
	"R122": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A config field holds a value outside its allowed range.",
	},
	"R123": {
		Category: CategoryConfig,
		Message:  "Project root not found",
		Detail:   "No directory containing fsroutes.json, fsroutes.yaml or a pages directory was found.",
	},

	// ============================================
	// CLI Errors (R140-R159)
	// ============================================

	"R140": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with missing or malformed arguments.",
	},
	"R141": {
		Category: CategoryCLI,
		Message:  "No route matched",
		Detail:   "No route in the table matches the given path.",
	},
	"R142": {
		Category: CategoryCLI,
		Message:  "Method not allowed",
		Detail:   "The path matches endpoints, but none of them serve the given method.",
	},
	"R143": {
		Category: CategoryCLI,
		Message:  "Route validation failed",
		Detail:   "The route table has diagnostics.",
	},
	"R144": {
		Category: CategoryCLI,
		Message:  "Port in use",
		Detail:   "The inspector port is already in use.",
	},
}

// findingCodes maps route validation findings to registry codes.
var findingCodes = map[router.ValidationErrorType]string{
	router.ErrorDuplicateRoute:    "R100",
	router.ErrorDuplicateEndpoint: "R101",
	router.ErrorCatchAllNotLast:   "R102",
	router.ErrorDuplicateParam:    "R103",
	router.ErrorAmbiguousNesting:  "R104",
}

// FromValidation converts a route validation finding into a coded error.
func FromValidation(v router.ValidationError) *Error {
	code, ok := findingCodes[v.Type]
	if !ok {
		return Newf(CategoryRouting, "%s", v.Message).WithFiles(v.Files...)
	}
	return New(code).WithMessage("%s", v.Message).WithFiles(v.Files...)
}

// AllCodes returns all registered error codes in sorted order.
func AllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
