// Package migration exposes the batch engine to the operations API.
//
// Routes (read-only):
//
//	GET /migration/batches        recent batches, ?status= and ?limit=
//	GET /migration/batches/:id    one batch with its per-entity summary
//	GET /migration/reconcile      reconciliation report, ?refresh=true rebuilds the cache
//
// Writes happen only through the CLI (migrate, reset). The sub-packages hold
// the engine itself: content addressing, the row ledger, the entity appliers,
// the batch controller, the verifier and the reset tool.
package migration
