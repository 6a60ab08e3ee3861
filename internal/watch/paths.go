package watch

import (
	"path/filepath"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/pkg/router"
)

// ProjectPaths returns the route directories of a project: the pages
// directory and every endpoint directory, cleaned and de-duplicated.
func ProjectPaths(cfg *config.Config) []string {
	paths := []string{cfg.PagesPath()}
	for _, kind := range router.EndpointKinds {
		paths = append(paths, cfg.EndpointPath(kind))
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}

// FromConfig creates a watcher over the project's route directories using
// the configured interval and ignore patterns.
func FromConfig(cfg *config.Config) *Watcher {
	ignore := append(append([]string(nil), DefaultIgnore...), cfg.Watch.Ignore...)
	return New(Config{
		Paths:    ProjectPaths(cfg),
		Ignore:   ignore,
		Interval: cfg.WatchInterval(),
	})
}
