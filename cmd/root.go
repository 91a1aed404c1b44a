package cmd

import (
	"errors"
	"fmt"
	"os"

	"accounting-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "accounting-sync",
	Short: "Accounting snapshot migration engine",
	Long: `accounting-sync migrates an exported accounting store into a relational target.
Batches are content addressed and idempotent; a reconciliation report verifies
the result independently of the engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit status. A nil Err means the outcome has
// already been reported and only the status is left to set.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCode maps a command error onto the process status.
func exitCode(err error) int {
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}

func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	var exit *ExitError
	if errors.As(err, &exit) && exit.Err == nil {
		os.Exit(exit.Code)
	}

	// Console encoding with the development config keeps ISO8601 timestamps for CLI users.
	cfg := &logger.Config{
		Level:  "debug",
		Format: "console",
	}

	l, logErr := logger.New(cfg)
	if logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Println(err)
	}
	os.Exit(exitCode(err))
}
