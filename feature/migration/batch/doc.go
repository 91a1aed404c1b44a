// Package batch implements the batch controller.
//
// A run computes the payload checksum and short-circuits when a completed
// batch already carries it. Otherwise the appliers run inside one
// transaction. Commit is followed by marking the batch completed with its
// per-entity summary. A failure rolls the transaction back, marks the batch
// failed outside of it and returns the original error.
//
// Runs are serialized by a lock.Guard (Redis in production, no-op when the
// lock is disabled).
package batch
