// Package payload turns a raw snapshot into typed, defaulted records.
//
// Collections and fields are looked up under every name the source store has
// used for them over time (camelCase, snake_case, English). Dates are bucketed
// into YYYY-MM periods; rows without a parseable date land in NoPeriod.
// Amounts are decimals and never pass through float64 after decoding.
//
// Validation is per row and never fails the snapshot: Validate returns a
// reason the appliers record as a Skipped outcome.
package payload
