package reset

import (
	"context"
	"fmt"

	"accounting-sync/feature/migration/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TableCount is the row count of one table.
type TableCount struct {
	Table  string `json:"table"`
	Rows   int64  `json:"rows"`
	Exists bool   `json:"exists"`
}

// Plan lists every table in truncation order with its current row count.
func Plan(ctx context.Context, db *gorm.DB) ([]TableCount, error) {
	tx := db.WithContext(ctx)
	out := make([]TableCount, 0, len(models.ResetOrder()))
	for _, table := range models.ResetOrder() {
		tc := TableCount{Table: table}
		if tx.Migrator().HasTable(table) {
			tc.Exists = true
			if err := tx.Table(table).Count(&tc.Rows).Error; err != nil {
				return nil, fmt.Errorf("failed to count %s: %w", table, err)
			}
		}
		out = append(out, tc)
	}
	return out, nil
}

// Reset empties every business and tracking table, children first, in one
// transaction. Missing tables are skipped. It returns the tables truncated.
func Reset(ctx context.Context, db *gorm.DB, logger *zap.Logger) ([]string, error) {
	var truncated []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range models.ResetOrder() {
			if !tx.Migrator().HasTable(table) {
				logger.Debug("Skipping missing table", zap.String("table", table))
				continue
			}
			if err := tx.Exec(truncateStatement(tx.Dialector.Name(), table)).Error; err != nil {
				return fmt.Errorf("failed to truncate %s: %w", table, err)
			}
			truncated = append(truncated, table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Target reset", zap.Strings("tables", truncated))
	return truncated, nil
}

// truncateStatement keeps the statement transactional: MySQL's TRUNCATE
// commits implicitly and SQLite has none, so both use DELETE.
func truncateStatement(dialect, table string) string {
	switch dialect {
	case "postgres":
		return fmt.Sprintf(`TRUNCATE TABLE "%s" RESTART IDENTITY CASCADE`, table)
	case "mysql":
		return fmt.Sprintf("DELETE FROM `%s`", table)
	default:
		return fmt.Sprintf(`DELETE FROM "%s"`, table)
	}
}
