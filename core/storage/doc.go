// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client. accounting-sync uses it for two things: reading an
// exported snapshot from a bucket instead of the local disk, and persisting
// reconciliation reports as artifacts next to it.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Helpers
//
//   - EnsureBucket: creates the bucket on first use.
//   - Upload: writes a byte slice as an object.
//   - Download: reads a whole object.
//   - ListKeys: lists object names under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	data, err := storage.Download(ctx, client, cfg.Storage.Bucket, "snapshots/store.json")
package storage
