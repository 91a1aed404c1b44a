// Package reset returns the target to an empty state.
//
// Tables are emptied in models.ResetOrder (children before parents) inside a
// single transaction, so a failure leaves every table untouched. Tracking
// tables are included: the next batch after a reset behaves as a first run.
package reset
