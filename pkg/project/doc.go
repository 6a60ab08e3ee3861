// Package project ties the route scanners, the route cache and file change
// events together for one project root.
//
// A Project owns two caches, one for the page tree and one for the endpoint
// list. Scans are memoized until a route file is added or removed:
//
//	cfg, _ := config.LoadOrDefault(".")
//	p := project.New(cfg)
//
//	m, ok, err := p.MatchPage(ctx, "/users/42")
//
//	w := watch.FromConfig(cfg)
//	w.OnEvent(func(ev watch.Event) { p.HandleEvent(ev) })
//
// A Project can travel with a request context through NewContext and
// FromContext.
package project
