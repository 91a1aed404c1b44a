package migration

import "accounting-sync/feature/migration/batch"

// Config holds configuration for the batch engine and the verifier.
type Config struct {
	// SnapshotPath is the exported store file read when no object is given.
	SnapshotPath string `mapstructure:"snapshot_path" default:"data/store.json"`
	// SnapshotObject is the storage object holding the snapshot. Takes precedence over SnapshotPath.
	SnapshotObject string `mapstructure:"snapshot_object" default:""`
	// Source labels batches whose snapshot does not name its origin.
	Source string `mapstructure:"source" default:"store_json"`
	// ReportPath is where the reconcile command writes the JSON report.
	ReportPath string `mapstructure:"report_path" default:"docs/MIGRATION_RECONCILIATION_REPORT.json"`
	// ReportObject is the storage object the report is uploaded to.
	ReportObject string `mapstructure:"report_object" default:"reports/migration-reconciliation.json"`
	// FailOnDrop fails the whole batch when a row misses a required parent.
	FailOnDrop bool `mapstructure:"fail_on_drop" default:"false"`
	// FullWidthKeys derives fallback row keys from the full digest instead of 16 hex characters.
	FullWidthKeys bool `mapstructure:"full_width_keys" default:"false"`
	// Strict requires the core collections to be present in the snapshot.
	Strict bool `mapstructure:"strict" default:"false"`
}

// BatchOptions maps the configuration onto controller options.
func (c Config) BatchOptions(lockKey string) batch.Options {
	return batch.Options{
		LockKey:       lockKey,
		FailOnDrop:    c.FailOnDrop,
		FullWidthKeys: c.FullWidthKeys,
	}
}
