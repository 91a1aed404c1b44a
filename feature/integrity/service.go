package integrity

import (
	"context"
	"fmt"

	"accounting-sync/core/storage"
	"accounting-sync/feature/integrity/checks"
	"accounting-sync/feature/migration/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	logger  *zap.Logger
	db      *gorm.DB
	objects []string
}

// NewService creates a new integrity service. objects are the storage keys
// the storage check expects to find (configured snapshot and report).
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, objects ...string) *Service {
	return &Service{
		client:  client,
		bucket:  bucket,
		logger:  logger,
		db:      db,
		objects: objects,
	}
}

// CheckSchema compares the live target schema with the migration models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, models.All())
}

// CheckStorage verifies the bucket, its folders and the configured objects.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	return checks.CheckStorage(ctx, s.client, s.bucket, s.objects)
}

// FixStorage creates the bucket and the missing folders.
func (s *Service) FixStorage(ctx context.Context, missing []string) error {
	if s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	return checks.FixStorage(ctx, s.client, s.bucket, s.logger, missing)
}
