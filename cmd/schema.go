package cmd

import (
	"fmt"

	"accounting-sync/feature/integrity"
	"accounting-sync/feature/integrity/checks"
	"accounting-sync/feature/migration/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var schemaFixStorage bool

// schemaCmd creates or updates the target tables.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or update the target tables",
	RunE:  runSchemaMigrate,
}

// schemaCheckCmd compares the live schema with the models.
var schemaCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the live target schema with the models",
	Long:  `Reports missing tables, missing columns and type mismatches. Also checks the storage bucket when storage is configured. Exits with status 2 on drift.`,
	RunE:  runSchemaCheck,
}

func init() {
	schemaCheckCmd.Flags().BoolVar(&schemaFixStorage, "fix-storage", false, "Create the bucket and missing folders")

	schemaCmd.AddCommand(schemaCheckCmd)
	RootCmd.AddCommand(schemaCmd)
}

func runSchemaMigrate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.db.WithContext(cmd.Context()).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate target schema: %w", err)
	}
	a.log.Info("Target schema up to date", zap.Int("tables", len(models.All())))
	return nil
}

func runSchemaCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	svc := integrity.NewService(a.store, a.cfg.Storage.Bucket, a.log, a.db, a.cfg.Migration.SnapshotObject)

	a.log.Info("Checking target schema...")
	report, err := svc.CheckSchema()
	if err != nil {
		return err
	}
	logSchemaReport(a.log, report)

	drift := !report.Matched
	if a.store != nil {
		a.log.Info("Checking storage...", zap.String("bucket", a.cfg.Storage.Bucket))
		storageReport, err := svc.CheckStorage(ctx)
		switch {
		case err != nil && schemaFixStorage:
			a.log.Warn("Storage check failed, creating bucket", zap.Error(err))
			if err := svc.FixStorage(ctx, checks.RequiredPrefixes); err != nil {
				return err
			}
		case err != nil:
			a.log.Error("Storage check failed", zap.Error(err))
			drift = true
		case storageReport.Matched():
			a.log.Info("Storage is intact.")
		default:
			a.log.Warn("Storage incomplete",
				zap.Strings("missing_folders", storageReport.MissingFolders),
				zap.Strings("missing_objects", storageReport.MissingObjects))
			if schemaFixStorage && len(storageReport.MissingFolders) > 0 {
				if err := svc.FixStorage(ctx, storageReport.MissingFolders); err != nil {
					return err
				}
				a.log.Info("Storage folders created.")
			} else {
				drift = true
			}
		}
	}

	if err := printJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if drift {
		return &ExitError{Code: 2}
	}
	return nil
}

func logSchemaReport(l *zap.Logger, report *checks.SchemaReport) {
	if report.Matched {
		l.Info("Target schema matches the models.", zap.String("dialect", report.Dialect))
		return
	}
	l.Warn("Target schema mismatches found", zap.String("dialect", report.Dialect))
	for _, table := range report.TableNames() {
		tbl := report.Tables[table]
		switch {
		case tbl.Status == checks.StatusMissing:
			l.Warn("Missing table", zap.String("table", table))
		case tbl.Status != checks.StatusOK:
			if len(tbl.MissingColumns) > 0 {
				l.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
			}
			if len(tbl.TypeMismatches) > 0 {
				l.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
			}
		}
	}
	for _, e := range report.Errors {
		l.Error("Inspection Error", zap.String("error", e))
	}
}
