// Package router implements file-based routing tables.
//
// The router provides:
//   - Page route discovery from a pages directory, with nested layouts
//   - Server endpoint discovery with per-method handler files
//   - Precedence sorting (static > dynamic > catch-all)
//   - Path matching with parameter extraction
//   - Validation of duplicate and malformed routes
//
// # File Structure Convention
//
// Page routes are derived from files in the pages directory:
//
//	pages/
//	├── index.vue            → /
//	├── about.vue            → /about
//	├── users.vue            → /users (layout hosting the routes below)
//	├── users/
//	│   ├── index.vue        → /users (index child "")
//	│   └── [id].vue         → /users/:id (child ":id")
//	├── docs/
//	│   └── [...slug].vue    → /docs/:slug+
//	├── [[...all]].vue       → /:all*
//	└── _partial.vue         (ignored)
//
// Server endpoints are derived from server/api (served below /api) and
// server/routes (served from the root):
//
//	server/api/users/index.get.ts   → GET  /api/users
//	server/api/users/index.post.ts  → POST /api/users
//	server/api/users/[id].ts        → any  /api/users/:id
//	server/routes/files/[...path].ts → any /files/:path+
//
// # Parameters
//
//	[id]         → :id     (one segment, scalar)
//	[...slug]    → :slug+  (one or more segments)
//	[[...slug]]  → :slug*  (zero or more segments, pages only)
//
// Page catch-alls bind the remaining segments as a list; endpoint
// catch-alls bind them as one slash-joined string.
//
// # Usage
//
//	routes, err := router.ScanPages(ctx, "pages")
//	if err != nil {
//	    return err
//	}
//
//	m, ok := router.Match("/users/42?tab=posts", routes)
//	if ok {
//	    // m.Pattern == "/users/:id", m.Params.Get("id") == "42"
//	}
package router
