package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"accounting-sync/core/lock"
	"accounting-sync/feature/migration/apply"
	"accounting-sync/feature/migration/content"
	"accounting-sync/feature/migration/errs"
	"accounting-sync/feature/migration/ledger"
	"accounting-sync/feature/migration/models"
	"accounting-sync/feature/migration/payload"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const tracerName = "accounting-sync/batch"

// markTimeout bounds the best-effort status update after a failed apply.
const markTimeout = 10 * time.Second

// Options configures a Controller.
type Options struct {
	// LockKey is the run guard key.
	LockKey string
	// FailOnDrop turns an unresolved required parent into a batch failure.
	FailOnDrop bool
	// FullWidthKeys derives row keys from the full digest.
	FullWidthKeys bool
}

// Controller owns the batch lifecycle: running -> completed | failed.
type Controller struct {
	db        *gorm.DB
	guard     lock.Guard
	logger    *zap.Logger
	opts      Options
	addressor content.Addressor
	ledger    *ledger.Ledger
	engine    *apply.Engine
	now       func() time.Time
}

// NewController wires a controller with the default engine.
func NewController(db *gorm.DB, guard lock.Guard, logger *zap.Logger, opts Options) *Controller {
	if guard == nil {
		guard = lock.Noop{}
	}
	return &Controller{
		db:        db,
		guard:     guard,
		logger:    logger,
		opts:      opts,
		addressor: content.NewAddressor(opts.FullWidthKeys),
		ledger:    ledger.New(),
		engine:    apply.NewEngine(),
		now:       time.Now,
	}
}

// WithEngine replaces the applier engine.
func (c *Controller) WithEngine(e *apply.Engine) *Controller {
	c.engine = e
	return c
}

// Start is the outcome of Begin.
type Start struct {
	BatchID         string
	Checksum        string
	Skipped         bool
	PreviousBatchID string
}

// Result is the outcome of a run.
type Result struct {
	BatchID         string        `json:"batchId"`
	Checksum        string        `json:"checksum"`
	Status          string        `json:"status"`
	Skipped         bool          `json:"skipped"`
	PreviousBatchID string        `json:"previousBatchId,omitempty"`
	Summary         apply.Summary `json:"summary"`
}

// Plan is the outcome of a dry run.
type Plan struct {
	Checksum  string         `json:"checksum"`
	WouldSkip bool           `json:"wouldSkip"`
	Counts    map[string]int `json:"counts"`
}

// Begin computes the payload checksum. A completed batch with the same
// checksum short-circuits the run. A failed or stale running batch with the
// same checksum is reused, otherwise a new running batch is created.
func (c *Controller) Begin(ctx context.Context, p *payload.Payload) (*Start, error) {
	checksum, err := c.addressor.PayloadChecksum(p)
	if err != nil {
		return nil, fmt.Errorf("failed to compute payload checksum: %w", err)
	}

	var existing models.MigrationBatch
	err = c.db.WithContext(ctx).Where("checksum = ?", checksum).Take(&existing).Error
	switch {
	case err == nil && existing.Status == models.StatusCompleted:
		return &Start{BatchID: existing.ID, Checksum: checksum, Skipped: true, PreviousBatchID: existing.ID}, nil
	case err == nil:
		c.logger.Warn("Reusing unfinished batch",
			zap.String("batch_id", existing.ID),
			zap.String("status", existing.Status),
		)
		err = c.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"status":      models.StatusRunning,
			"source":      sourceLabel(p),
			"created_at":  c.now().UTC(),
			"finished_at": nil,
			"summary":     nil,
			"error":       "",
		}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to reopen batch %s: %w", existing.ID, err)
		}
		return &Start{BatchID: existing.ID, Checksum: checksum}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to look up batch by checksum: %w", err)
	}

	b := models.MigrationBatch{
		ID:        uuid.NewString(),
		Checksum:  checksum,
		Source:    sourceLabel(p),
		Status:    models.StatusRunning,
		CreatedAt: c.now().UTC(),
	}
	if err := c.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return &Start{BatchID: b.ID, Checksum: checksum}, nil
}

// Run executes one batch under the run guard. The apply phase is a single
// transaction; on failure it is rolled back, the batch marked failed and the
// original error returned.
func (c *Controller) Run(ctx context.Context, p *payload.Payload) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "batch.Run")
	defer span.End()

	// ctx is cancelled if the lease is lost, aborting the apply transaction.
	ctx, release, err := c.guard.Acquire(ctx, c.opts.LockKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock")
		return nil, err
	}
	defer release()

	start, err := c.Begin(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("batch.id", start.BatchID),
		attribute.String("batch.checksum", start.Checksum),
		attribute.Bool("batch.skipped", start.Skipped),
	)

	if start.Skipped {
		c.logger.Info("Payload already migrated",
			zap.String("checksum", start.Checksum),
			zap.String("previous_batch_id", start.PreviousBatchID),
		)
		return &Result{
			BatchID:         start.BatchID,
			Checksum:        start.Checksum,
			Status:          models.StatusCompleted,
			Skipped:         true,
			PreviousBatchID: start.PreviousBatchID,
		}, nil
	}

	log := c.logger.With(zap.String("batch_id", start.BatchID))
	log.Info("Batch started", zap.String("checksum", start.Checksum))
	began := c.now()

	var summary apply.Summary
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rc := &apply.RunContext{
			Tx:         tx,
			Payload:    p,
			Ledger:     c.ledger,
			Addressor:  c.addressor,
			BatchID:    start.BatchID,
			IDs:        apply.NewIDMap(),
			FailOnDrop: c.opts.FailOnDrop,
			Logger:     log,
		}
		var runErr error
		summary, runErr = c.engine.Run(ctx, rc)
		return runErr
	})
	if err != nil {
		if !errs.IsTransaction(err) {
			err = &errs.TransactionError{BatchID: start.BatchID, Err: err}
		}
		c.markFailed(ctx, start.BatchID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply")
		log.Error("Batch failed", zap.Error(err))
		return nil, err
	}

	if err := c.markCompleted(ctx, start.BatchID, summary); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "complete")
		return nil, err
	}

	totals := summary.Totals()
	log.Info("Batch completed",
		zap.Int("applied", totals.Applied),
		zap.Int("skipped", totals.Skipped),
		zap.Int("dropped", totals.Dropped),
		zap.Duration("duration", c.now().Sub(began)),
	)
	return &Result{
		BatchID:  start.BatchID,
		Checksum: start.Checksum,
		Status:   models.StatusCompleted,
		Summary:  summary,
	}, nil
}

// DryRun reports the checksum and source counts without writing. A target
// without tracking tables has never completed a batch.
func (c *Controller) DryRun(ctx context.Context, p *payload.Payload) (*Plan, error) {
	checksum, err := c.addressor.PayloadChecksum(p)
	if err != nil {
		return nil, fmt.Errorf("failed to compute payload checksum: %w", err)
	}
	plan := &Plan{Checksum: checksum, Counts: apply.SourceCounts(p)}
	if !c.db.WithContext(ctx).Migrator().HasTable(&models.MigrationBatch{}) {
		return plan, nil
	}

	var n int64
	err = c.db.WithContext(ctx).Model(&models.MigrationBatch{}).
		Where("checksum = ? AND status = ?", checksum, models.StatusCompleted).
		Count(&n).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up batch by checksum: %w", err)
	}
	plan.WouldSkip = n > 0
	return plan, nil
}

func (c *Controller) markCompleted(ctx context.Context, batchID string, summary apply.Summary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode batch summary: %w", err)
	}
	err = c.db.WithContext(ctx).Model(&models.MigrationBatch{ID: batchID}).Updates(map[string]any{
		"status":      models.StatusCompleted,
		"finished_at": c.now().UTC(),
		"summary":     datatypes.JSON(body),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark batch %s completed: %w", batchID, err)
	}
	return nil
}

// markFailed runs outside the rolled back transaction; its own failure is only logged.
func (c *Controller) markFailed(ctx context.Context, batchID string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	err := c.db.WithContext(ctx).Model(&models.MigrationBatch{ID: batchID}).Updates(map[string]any{
		"status":      models.StatusFailed,
		"finished_at": c.now().UTC(),
		"error":       cause.Error(),
	}).Error
	if err != nil {
		c.logger.Error("Failed to mark batch failed", zap.String("batch_id", batchID), zap.Error(err))
	}
}

func sourceLabel(p *payload.Payload) string {
	if p.Source == "" {
		return "snapshot"
	}
	return p.Source
}
