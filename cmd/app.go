package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"accounting-sync/core/config"
	"accounting-sync/core/database"
	"accounting-sync/core/logger"
	"accounting-sync/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is what every command needs: configuration, logger, target and storage.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	store storage.Client
}

// bootstrap loads and validates configuration before anything touches the target.
// Storage is optional: a client that cannot be built is logged and left nil.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, err
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}
	logg = logg.With(zap.String("target", cfg.Database.Driver+"/"+cfg.Database.Name))

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Warn("Storage unavailable", zap.Error(err))
		store = nil
	}

	return &app{cfg: cfg, log: logg, db: db, store: store}, nil
}

// close releases the database pool and flushes the logger.
func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}

// snapshotLocation resolves flags against configuration. An explicit path
// flag wins over a configured object.
func (a *app) snapshotLocation(path, object string) (string, string) {
	if object != "" {
		return "", object
	}
	if path != "" {
		return path, ""
	}
	return a.cfg.Migration.SnapshotPath, a.cfg.Migration.SnapshotObject
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirmDestructiveAction prompts for confirmation unless auto is set.
func confirmDestructiveAction(in io.Reader, out io.Writer, auto bool, prompt string) bool {
	if auto {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprintf(out, "\n⚠️  %s Type 'yes' to confirm: ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
