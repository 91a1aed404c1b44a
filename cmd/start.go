package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"accounting-sync/core/loader"
	"accounting-sync/core/logger"
	"accounting-sync/core/middleware/auth"
	"accounting-sync/core/middleware/rayid"

	"accounting-sync/feature/integrity"
	"accounting-sync/feature/migration"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the read-only operations API",
	Long:  `Starts the HTTP server exposing batch state, the reconciliation report and the integrity checks.`,
	RunE:  runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg
	logg := a.log

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager(logg)
	cacheTTL := time.Duration(cfg.Server.ReportCacheSeconds) * time.Second
	mgr.Register(migration.NewFeature(a.db, a.store, cfg.Storage.Bucket, cfg.Migration, logg, cacheTTL))
	mgr.Register(integrity.NewFeature(a.store, cfg.Storage.Bucket, logg, a.db, cfg.Migration.SnapshotObject))

	// RayID first so every later log line carries it.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	if !cfg.Server.IsProtected() {
		logg.Warn("API key not set: the operations API is unprotected")
	}
	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	if err := mgr.LoadAll(app); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port), zap.Strings("features", mgr.Names()))
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-c:
	}
	logg.Info("Shutting down server...")
	return app.Shutdown()
}
