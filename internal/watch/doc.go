// Package watch detects route file changes by polling.
//
// A Watcher records the modification time of every file below its paths and
// reports additions, removals and modifications on each poll. It only
// produces events; consumers decide what to invalidate.
package watch
