package cmd

import (
	"fmt"

	"accounting-sync/feature/migration/reset"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resetYes    bool
	resetDryRun bool
)

// resetCmd empties the target.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Empty every migrated and tracking table",
	Long: `Deletes every row of the business tables and of the batch, row ledger and
report tables, children first, in one transaction. The next migrate run
starts from scratch.

Examples:
  # Show row counts only
  reset --dry-run

  # Non-interactive
  reset --yes`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Auto-confirm (non-interactive)")
	resetCmd.Flags().BoolVar(&resetDryRun, "dry-run", false, "List tables and row counts, no changes")

	RootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	plan, err := reset.Plan(ctx, a.db)
	if err != nil {
		return err
	}
	var total int64
	for _, tc := range plan {
		if tc.Exists {
			a.log.Info("Table", zap.String("table", tc.Table), zap.Int64("rows", tc.Rows))
		}
		total += tc.Rows
	}

	if resetDryRun {
		a.log.Info("Dry-run mode: No changes were made.", zap.Int64("rows", total))
		return printJSON(cmd.OutOrStdout(), plan)
	}

	prompt := fmt.Sprintf("This deletes %d rows from %s.", total, a.cfg.Database.Name)
	if !confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout(), resetYes, prompt) {
		a.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	tables, err := reset.Reset(ctx, a.db, a.log)
	if err != nil {
		return err
	}
	a.log.Info("Reset completed", zap.Int("tables", len(tables)))
	return nil
}
