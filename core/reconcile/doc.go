// Package reconcile compares aggregates computed independently from two
// sources of truth: the source snapshot a batch was built from and the
// relational target it was written to.
//
// # Architecture
//
// 1. Adapter: loads the counts and control sums of each side. Adapters own
//    the knowledge of which tables and collections map to which key.
//
// 2. Engine: Compare builds a Report with diff = target - source for every
//    key. Control diffs are rounded to two decimals before comparison and
//    zeroDiff is true only when every diff is exactly zero.
//
// 3. Cache: TTL-based caching layer with stampede protection, used by the
//    read-only HTTP API so repeated requests do not re-aggregate the target.
//
// Both sides are loaded concurrently. The reconciler never writes.
//
// # Usage Example
//
//	spec := &reconcile.Spec{Adapter: adapter}
//	report, err := reconcile.Verify(ctx, spec, db)
//	if !report.Integrity.ZeroDiff {
//	    // exit with the mismatch status
//	}
package reconcile
