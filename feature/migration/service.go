package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounting-sync/core/reconcile"
	"accounting-sync/core/storage"
	"accounting-sync/feature/migration/errs"
	"accounting-sync/feature/migration/models"
	"accounting-sync/feature/migration/payload"
	"accounting-sync/feature/migration/snapshot"
	"accounting-sync/feature/migration/verify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrBatchNotFound is returned when no batch carries the requested id.
var ErrBatchNotFound = errors.New("batch not found")

// Batch listing bounds.
const (
	DefaultBatchLimit = 50
	MaxBatchLimit     = 500
)

// Service loads snapshots and reads batch and reconciliation state.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger
	spec   *reconcile.Spec
}

// NewService creates a new migration service. A zero cacheTTL disables the report cache.
func NewService(db *gorm.DB, client storage.Client, bucket string, cfg Config, logger *zap.Logger, cacheTTL time.Duration) *Service {
	s := &Service{
		db:     db,
		client: client,
		bucket: bucket,
		cfg:    cfg,
		logger: logger,
	}
	s.spec = &reconcile.Spec{
		Adapter:  verify.NewAdapter(s.ConfiguredPayload),
		CacheTTL: cacheTTL,
	}
	return s
}

// LoadSnapshot reads the snapshot from object when set, otherwise from path.
func (s *Service) LoadSnapshot(ctx context.Context, path, object string) (snapshot.Snapshot, error) {
	if object != "" {
		if s.client == nil {
			return nil, errs.Configuration("snapshot object "+object+" requested but storage is not configured", nil)
		}
		s.logger.Debug("Loading snapshot from storage", zap.String("bucket", s.bucket), zap.String("object", object))
		return snapshot.LoadObject(ctx, s.client, s.bucket, object)
	}
	if path == "" {
		return nil, errs.Configuration("no snapshot path or object configured", nil)
	}
	s.logger.Debug("Loading snapshot from file", zap.String("path", path))
	return snapshot.LoadFile(path)
}

// LoadPayload loads and normalizes a snapshot. Under strict mode the core
// collections must be present.
func (s *Service) LoadPayload(ctx context.Context, path, object string) (*payload.Payload, error) {
	snap, err := s.LoadSnapshot(ctx, path, object)
	if err != nil {
		return nil, err
	}
	if s.cfg.Strict {
		if err := snap.RequireCollections(snapshot.RequiredCollections...); err != nil {
			return nil, err
		}
	}
	p, err := payload.Normalize(snap)
	if err != nil {
		return nil, err
	}
	if p.Source == "" {
		p.Source = s.cfg.Source
	}
	return p, nil
}

// ConfiguredPayload loads the payload from the configured snapshot location.
func (s *Service) ConfiguredPayload(ctx context.Context) (*payload.Payload, error) {
	return s.LoadPayload(ctx, s.cfg.SnapshotPath, s.cfg.SnapshotObject)
}

// ListBatches returns the most recent batches first, optionally filtered by status.
func (s *Service) ListBatches(ctx context.Context, status string, limit int) ([]models.MigrationBatch, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	if limit > MaxBatchLimit {
		limit = MaxBatchLimit
	}

	q := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.MigrationBatch
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return out, nil
}

// GetBatch returns one batch by id.
func (s *Service) GetBatch(ctx context.Context, id string) (*models.MigrationBatch, error) {
	var b models.MigrationBatch
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch %s: %w", id, err)
	}
	return &b, nil
}

// Reconcile verifies the configured snapshot against the target, served from
// cache while the TTL holds. refresh drops the cached sides first.
func (s *Service) Reconcile(ctx context.Context, refresh bool) (*reconcile.Report, error) {
	if refresh {
		reconcile.InvalidateCache(s.spec)
	}
	return reconcile.VerifyCached(ctx, s.spec, s.db)
}
