package cmd

import (
	"fmt"
	"strings"

	"accounting-sync/core/reconcile"
	"accounting-sync/feature/migration"
	"accounting-sync/feature/migration/verify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileSnapshot    string
	reconcileFromStorage string
	reconcileOutput      string
	reconcileXLSX        string
	reconcileUpload      bool
	reconcilePersist     bool
)

// reconcileCmd verifies the target against the snapshot.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare snapshot and target counts and control sums",
	Long: `Builds the reconciliation report: per-entity row counts and the money
control sums on both sides, diff = target - source. Exits with status 2 when
any diff is non-zero.

Examples:
  # Write the report to the configured path
  reconcile

  # Also export a spreadsheet and upload both artifacts
  reconcile --xlsx docs/reconciliation.xlsx --upload

  # Keep the report in the target database
  reconcile --persist`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileSnapshot, "snapshot", "", "Snapshot file (defaults to migration.snapshot_path)")
	reconcileCmd.Flags().StringVar(&reconcileFromStorage, "from-storage", "", "Snapshot object in the storage bucket")
	reconcileCmd.Flags().StringVar(&reconcileOutput, "output", "", "Report path (defaults to migration.report_path)")
	reconcileCmd.Flags().StringVar(&reconcileXLSX, "xlsx", "", "Also export the report as a spreadsheet")
	reconcileCmd.Flags().BoolVar(&reconcileUpload, "upload", false, "Upload the report to migration.report_object")
	reconcileCmd.Flags().BoolVar(&reconcilePersist, "persist", false, "Store the report in reconciliation_reports")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	svc := migration.NewService(a.db, a.store, a.cfg.Storage.Bucket, a.cfg.Migration, a.log, 0)
	path, object := a.snapshotLocation(reconcileSnapshot, reconcileFromStorage)
	p, err := svc.LoadPayload(ctx, path, object)
	if err != nil {
		return err
	}

	report, err := reconcile.Verify(ctx, &reconcile.Spec{Adapter: verify.FromPayload(p)}, a.db)
	if err != nil {
		return fmt.Errorf("failed to build reconciliation report: %w", err)
	}

	output := reconcileOutput
	if output == "" {
		output = a.cfg.Migration.ReportPath
	}
	if err := verify.WriteFile(output, report); err != nil {
		return err
	}
	a.log.Info("Report written", zap.String("file", output))

	if reconcileXLSX != "" {
		if err := verify.ExportXLSX(reconcileXLSX, report); err != nil {
			return err
		}
		a.log.Info("Spreadsheet written", zap.String("file", reconcileXLSX))
	}

	if reconcileUpload {
		if err := uploadReport(cmd, a, report); err != nil {
			return err
		}
	}

	if reconcilePersist {
		row, err := verify.Save(ctx, a.db, report)
		if err != nil {
			return err
		}
		a.log.Info("Report persisted", zap.Uint("id", row.ID))
	}

	a.log.Info("Reconciliation report",
		zap.Bool("zero_diff", report.Integrity.ZeroDiff),
		zap.String("message", report.Integrity.Message),
	)
	if !report.Integrity.ZeroDiff {
		a.log.Warn("Integrity mismatch", zap.Strings("mismatches", report.Integrity.Mismatches))
		return &ExitError{Code: 2}
	}
	return nil
}

func uploadReport(cmd *cobra.Command, a *app, report *reconcile.Report) error {
	if a.store == nil {
		return fmt.Errorf("--upload requires a storage client")
	}
	ctx := cmd.Context()
	object := a.cfg.Migration.ReportObject
	if err := verify.Upload(ctx, a.store, a.cfg.Storage.Bucket, object, report); err != nil {
		return err
	}
	a.log.Info("Report uploaded", zap.String("bucket", a.cfg.Storage.Bucket), zap.String("object", object))

	if reconcileXLSX == "" {
		return nil
	}
	xlsxObject := strings.TrimSuffix(object, ".json") + ".xlsx"
	if err := verify.UploadXLSX(ctx, a.store, a.cfg.Storage.Bucket, xlsxObject, report); err != nil {
		return err
	}
	a.log.Info("Spreadsheet uploaded", zap.String("object", xlsxObject))
	return nil
}
