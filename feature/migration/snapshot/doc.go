// Package snapshot loads the exported business state of the source store.
//
// A snapshot is kept as raw JSON per top-level key; typing and defaulting are
// the job of the payload normalizer. Shape validation beyond "is a JSON object"
// belongs to whoever produced the export, except for the strict mode check of
// RequireCollections.
package snapshot
