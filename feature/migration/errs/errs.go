// Package errs defines the failure taxonomy of the batch engine.
//
// Only ConfigurationError and TransactionError stop a run. ValidationError and
// ReferentialGapError describe a single row and are normally absorbed into the
// row outcome; they surface as errors only under the strict referential policy.
// An integrity mismatch is never an error value: it is the verdict of the
// reconciliation report and the exit status of the reconcile command.
package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing or unusable setting. Raised before any write.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return "configuration error: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Configuration builds a ConfigurationError.
func Configuration(msg string, err error) error {
	return &ConfigurationError{Msg: msg, Err: err}
}

// ValidationError reports a malformed source row.
type ValidationError struct {
	Entity string
	RowKey string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s row %q: %s", e.Entity, e.RowKey, e.Reason)
}

// ReferentialGapError reports a row whose required parent could not be resolved.
type ReferentialGapError struct {
	Entity string
	RowKey string
	Parent string
	Ref    string
}

func (e *ReferentialGapError) Error() string {
	return fmt.Sprintf("%s row %q references missing %s %q", e.Entity, e.RowKey, e.Parent, e.Ref)
}

// TransactionError wraps a store failure during the apply phase of a batch.
type TransactionError struct {
	BatchID string
	Entity  string
	Err     error
}

func (e *TransactionError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("batch %s failed while applying %s: %v", e.BatchID, e.Entity, e.Err)
	}
	return fmt.Sprintf("batch %s failed: %v", e.BatchID, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsTransaction reports whether err carries a TransactionError.
func IsTransaction(err error) bool {
	var target *TransactionError
	return errors.As(err, &target)
}

// IsReferentialGap reports whether err carries a ReferentialGapError.
func IsReferentialGap(err error) bool {
	var target *ReferentialGapError
	return errors.As(err, &target)
}
