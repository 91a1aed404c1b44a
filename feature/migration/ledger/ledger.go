package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounting-sync/feature/migration/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger tracks the last applied checksum of every (entity, row key).
type Ledger struct {
	now func() time.Time
}

// New returns a ledger stamping entries with the wall clock.
func New() *Ledger {
	return &Ledger{now: time.Now}
}

// ShouldApply reports whether a row must be written. When the stored checksum
// matches it returns false and writes nothing; otherwise it upserts the entry
// to (checksum, batchID) and returns true. tx must be the apply transaction.
func (l *Ledger) ShouldApply(ctx context.Context, tx *gorm.DB, entity, rowKey, checksum, batchID string) (bool, error) {
	var current models.MigrationRow
	err := tx.WithContext(ctx).
		Select("checksum").
		Where("entity = ? AND row_key = ?", entity, rowKey).
		Take(&current).Error
	switch {
	case err == nil:
		if current.Checksum == checksum {
			return false, nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return false, fmt.Errorf("failed to read ledger entry %s/%s: %w", entity, rowKey, err)
	}

	entry := models.MigrationRow{
		Entity:    entity,
		RowKey:    rowKey,
		Checksum:  checksum,
		BatchID:   batchID,
		UpdatedAt: l.now().UTC(),
	}
	err = tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity"}, {Name: "row_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"checksum", "batch_id", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return false, fmt.Errorf("failed to write ledger entry %s/%s: %w", entity, rowKey, err)
	}
	return true, nil
}

// Checksums returns row key -> checksum for one entity.
func Checksums(ctx context.Context, db *gorm.DB, entity string) (map[string]string, error) {
	var rows []models.MigrationRow
	if err := db.WithContext(ctx).Where("entity = ?", entity).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for %s: %w", entity, err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.RowKey] = r.Checksum
	}
	return out, nil
}

// Entry returns the ledger row of (entity, rowKey), or nil when absent.
func Entry(ctx context.Context, db *gorm.DB, entity, rowKey string) (*models.MigrationRow, error) {
	var row models.MigrationRow
	err := db.WithContext(ctx).Where("entity = ? AND row_key = ?", entity, rowKey).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger entry %s/%s: %w", entity, rowKey, err)
	}
	return &row, nil
}
