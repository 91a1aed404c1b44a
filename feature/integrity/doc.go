// Package integrity provides structural health checks of the migration target.
//
// Unlike the reconciliation verifier, which compares business content, this
// package validates that the infrastructure the engine writes to is in shape.
//
// # Checks Provided
//
//   - Schema: the live target tables match the migration models (columns, types).
//   - Storage: the bucket exists with its snapshots/ and reports/ folders and the configured objects.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/storage : Runs the storage check.
package integrity
