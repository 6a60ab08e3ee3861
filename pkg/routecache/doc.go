// Package routecache memoizes directory scans.
//
// A Cache stores one scan result per absolute directory. Repeated calls
// return the stored value without touching the filesystem, and concurrent
// callers for an uncached directory share a single in-flight scan, so they
// all observe the identical result.
//
// The cache performs no filesystem watching. Whoever observes file changes
// calls Invalidate, after which the next Scan walks the directory again:
//
//	pages := routecache.New(func(ctx context.Context, dir string) ([]router.Route, error) {
//	    routes, err := router.ScanPages(ctx, dir)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return router.BuildTree(routes), nil
//	}, routecache.WithName("pages"))
//
//	tree, err := pages.Scan(ctx, "/app/pages")
//	...
//	pages.Invalidate("/app/pages")
//
// Caches are owned by their caller. There is no package-level state, so
// several projects can be served from one process.
package routecache
