// Package inspect serves a project's route tables over HTTP.
//
// The inspector answers questions a developer has while working on a
// file-routed project: which routes exist, which one a URL resolves to, and
// what is wrong with the table. It also streams invalidations over a
// WebSocket so tools can refresh when route files come and go.
//
//	GET  /_routes/pages                    nested page tree
//	GET  /_routes/endpoints                flat endpoint list
//	GET  /_routes/match?path=/users/42     page match
//	GET  /_routes/endpoint?path=&method=   endpoint match (404, 405 + Allow)
//	GET  /_routes/diagnostics              validation findings
//	POST /_routes/invalidate               drop both cached tables
//	GET  /_routes/events                   WebSocket invalidation stream
//	GET  /metrics                          Prometheus metrics
package inspect
