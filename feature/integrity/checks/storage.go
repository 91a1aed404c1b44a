package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"accounting-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// RequiredPrefixes lists the folders snapshots and report artifacts are kept under.
var RequiredPrefixes = []string{"snapshots", "reports"}

// StorageReport is the result of a storage check.
type StorageReport struct {
	Bucket         string   `json:"bucket"`
	MissingFolders []string `json:"missing_folders"`
	MissingObjects []string `json:"missing_objects"`
}

// Matched reports whether nothing is missing.
func (r *StorageReport) Matched() bool {
	return len(r.MissingFolders) == 0 && len(r.MissingObjects) == 0
}

// CheckStorage verifies the bucket exists, holds the required folders and the given objects.
func CheckStorage(ctx context.Context, client storage.Client, bucket string, objects []string) (*StorageReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	report := &StorageReport{
		Bucket:         bucket,
		MissingFolders: []string{},
		MissingObjects: []string{},
	}

	for _, folder := range RequiredPrefixes {
		if !hasPrefix(ctx, client, bucket, folderPath(folder)) {
			report.MissingFolders = append(report.MissingFolders, folder)
		}
	}

	for _, key := range objects {
		if key == "" {
			continue
		}
		if !hasObject(ctx, client, bucket, key) {
			report.MissingObjects = append(report.MissingObjects, key)
		}
	}

	return report, nil
}

// FixStorage creates the bucket and the missing folders.
func FixStorage(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, missing []string) error {
	if err := storage.EnsureBucket(ctx, client, bucket); err != nil {
		return err
	}
	for _, folder := range missing {
		_, err := client.PutObject(ctx, bucket, folderPath(folder), bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create folder", zap.String("folder", folder), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", folder))
	}
	return nil
}

func folderPath(folder string) string {
	if strings.HasSuffix(folder, "/") {
		return folder
	}
	return folder + "/"
}

func hasPrefix(ctx context.Context, client storage.Client, bucket, prefix string) bool {
	// Cancelling stops the listing goroutine once the first object is seen.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{Prefix: prefix, MaxKeys: 1}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		return obj.Err == nil
	}
	return false
}

func hasObject(ctx context.Context, client storage.Client, bucket, key string) bool {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{Prefix: key, MaxKeys: 1}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		return obj.Err == nil && obj.Key == key
	}
	return false
}
