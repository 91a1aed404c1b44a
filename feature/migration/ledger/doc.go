// Package ledger implements the row ledger stored in 'migration_rows'.
//
// ShouldApply is called for every row before its data write, on the same
// transaction, so a rollback undoes ledger and data together.
package ledger
