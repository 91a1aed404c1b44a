package models

import (
	"time"

	"gorm.io/datatypes"
)

// Batch states.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// MigrationBatch maps the 'migration_batches' table. Checksum is unique, so a
// payload has at most one batch row whatever its status.
type MigrationBatch struct {
	ID         string         `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Checksum   string         `gorm:"column:checksum;type:varchar(64);uniqueIndex;not null" json:"checksum"`
	Source     string         `gorm:"column:source;type:varchar(64);not null" json:"source"`
	Status     string         `gorm:"column:status;type:varchar(16);index;not null" json:"status"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null" json:"createdAt"`
	FinishedAt *time.Time     `gorm:"column:finished_at" json:"finishedAt,omitempty"`
	Summary    datatypes.JSON `gorm:"column:summary" json:"summary,omitempty"`
	Error      string         `gorm:"column:error;type:text" json:"error,omitempty"`
}

func (MigrationBatch) TableName() string { return "migration_batches" }

// MigrationRow maps the 'migration_rows' table (the row ledger).
type MigrationRow struct {
	ID        uint      `gorm:"primaryKey;column:id"`
	Entity    string    `gorm:"column:entity;type:varchar(64);uniqueIndex:idx_migration_rows_entity_row_key;not null"`
	RowKey    string    `gorm:"column:row_key;type:varchar(191);uniqueIndex:idx_migration_rows_entity_row_key;not null"`
	Checksum  string    `gorm:"column:checksum;type:varchar(64);not null"`
	BatchID   string    `gorm:"column:batch_id;type:varchar(36);index;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (MigrationRow) TableName() string { return "migration_rows" }

// ReconciliationReport maps the 'reconciliation_reports' table.
type ReconciliationReport struct {
	ID          uint           `gorm:"primaryKey;column:id"`
	GeneratedAt time.Time      `gorm:"column:generated_at;not null"`
	ZeroDiff    bool           `gorm:"column:zero_diff;not null"`
	Body        datatypes.JSON `gorm:"column:body;not null"`
}

func (ReconciliationReport) TableName() string { return "reconciliation_reports" }
