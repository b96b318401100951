// Package server exposes summarize runs over a small JSON HTTP API.
//
// # Routes
//
//	GET  /api/health      readiness warning, if no key is set
//	GET  /api/providers   provider registry
//	GET  /api/summary     cached summary for ?url= (page-load path)
//	POST /api/summarize   fresh summary (click path)
//	GET  /api/history     cached summaries, ?q= full-text, ?limit=
//	GET  /metrics         Prometheus metrics
//
// Errors are returned as {"error": message, "detail": structured error},
// with the HTTP status chosen from the error code.
package server
