// Command gpsctl runs maintenance tasks against the GPS game model store.
//
// Usage:
//
//	gpsctl migrate up
//	gpsctl migrate down 1
//	gpsctl seed-roster
//	gpsctl recompute --club club-demo --player player-01
//	gpsctl recompute --club club-demo --team team-demo-first
//	gpsctl cleanup --club club-demo
//	gpsctl registry check
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/gps-gamemodel/internal/app"
	"github.com/riskibarqy/gps-gamemodel/internal/config"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gpsctl",
		Short:         "Maintenance CLI for GPS reports and player game models",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(seedRosterCmd())
	root.AddCommand(recomputeCmd())
	root.AddCommand(cleanupCmd())
	root.AddCommand(registryCmd())
	return root
}

// runWithContainer loads config, wires the services and runs fn until it
// returns or the process is interrupted.
func runWithContainer(fn func(ctx context.Context, cfg config.Config, c *app.Container, logger *logging.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewJSON(cfg.LogLevel).WithService("gpsctl", cfg.ServiceVersion, cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}()

	return fn(ctx, cfg, c, logger)
}
