// Package app wires the application: configuration, logging, metrics,
// the one-time memoized workbook loads, the dashboard service, the chi
// router with its middleware chain, and the HTTP server lifecycle with
// graceful shutdown.
package app
