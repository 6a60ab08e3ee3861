// Package errors provides structured, actionable error messages for fsroutes.
//
// Every error carries a code from a registry (e.g. "R100") that maps to a
// category, a short message and a longer explanation. Errors can name the
// files involved and suggest a fix.
//
// # Error Categories
//
//   - routing: route table diagnostics (duplicates, misplaced catch-alls)
//   - config: configuration file errors
//   - cli: command line errors
//
// # Usage
//
//	err := errors.New("R100").
//	    WithFiles("pages/about.vue", "pages/about.tsx").
//	    WithSuggestion("Remove one of the files")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R100: Duplicate route
//	//
//	//   pages/about.vue
//	//   pages/about.tsx
//	//
//	//   Two page files resolve to the same URL pattern.
//	//
//	//   Hint: Remove one of the files
package errors
