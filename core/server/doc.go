// Package server holds the operations API configuration.
//
// The `start` command reads it to bind the Fiber listener, decide whether the
// API key middleware is mandatory and size the reconciliation report cache.
package server
