// Package verify reconciles a normalized snapshot with the migrated tables.
//
// The Adapter plugs into core/reconcile: the source side is counted from the
// payload, the target side from one COUNT/SUM query per table. Two control
// sums are compared besides the counts: movimientosTotal (sum of movement
// totals) and flujoCajaMonto (sum of cash-flow amounts).
//
// The report can be written as JSON, exported as a spreadsheet, uploaded to
// object storage and stored in reconciliation_reports.
package verify
