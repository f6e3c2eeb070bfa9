package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ginkit/internal/config"
	"ginkit/internal/database"
	"ginkit/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the ginkit schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withManager(func(m *database.Manager) error {
				if err := m.Migrate(); err != nil {
					return fmt.Errorf("migration up failed: %w", err)
				}
				logger.Get().Info("Migrations applied successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withManager(func(m *database.Manager) error {
				if err := m.RollbackMigration(); err != nil {
					return fmt.Errorf("migration down failed: %w", err)
				}
				logger.Get().Info("Rolled back 1 migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: withManager(func(m *database.Manager) error {
				version, dirty, err := m.MigrationVersion()
				if err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
				logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)
				return nil
			}),
		},
	)
	return root
}

// withManager opens the configured database around fn.
func withManager(fn func(*database.Manager) error) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		m, err := database.NewManager(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := m.Close(); err != nil {
				logger.Get().Warnf("database close error: %v", err)
			}
		}()
		return fn(m)
	}
}
