package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/iocache"
	"github.com/huangsam/courseload/schema"
)

// storeConfig loads the minimal configuration needed for store operations.
// It skips catalog and output validation so the stores can be managed on their own.
func storeConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	cfg.TableBackend = schema.DatabaseBackend(strings.ToLower(viper.GetString("table-backend")))
	cfg.TableDBConnect = viper.GetString("table-db-connect")
	if _, ok := schema.ValidTableBackends[cfg.TableBackend]; !ok {
		return fmt.Errorf("invalid table backend '%s'", cfg.TableBackend)
	}
	if err := contract.ValidateDatabaseConnectionString(cfg.TableBackend, cfg.TableDBConnect); err != nil {
		return err
	}

	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	cfg.StoreDBConnect = viper.GetString("store-db-connect")
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'", cfg.StoreBackend)
	}
	if err := contract.ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeSetupWrapper loads the store configuration and opens both stores.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := storeConfig(); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.TableBackend, cfg.TableDBConnect, 0, cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}
	return nil
}

// storeConfigWrapper loads the store configuration without opening any store, so files
// can be removed and migrations can run on a fresh database.
func storeConfigWrapper(_ *cobra.Command, _ []string) error {
	return storeConfig()
}

// sqlitePath returns the SQLite file behind a store.
func sqlitePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// storeCmd focused on score table and run history management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage saved score tables and run history",
	Long: `Manage the two persistence stores.

The score table store keeps the last burnout table and session history per student so
recommend and schedule runs can skip recomputation. The run store records every scores,
recommend, session and schedule run with its subject scores and recommendation ranks.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis (score tables only), or None

Subcommands:
  status  - Show statistics and connection info for both stores
  clear   - Remove stored data
  export  - Export run history to Parquet
  migrate - Run run store schema migrations`,
}

// storeStatusCmd shows the status of both stores.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if tables := iocache.Manager.GetTableStore(); tables != nil {
			status, err := tables.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get score table status", err)
			}
			iocache.PrintTableStatus(os.Stdout, status)
			fmt.Println()
		}
		if runs := iocache.Manager.GetRunStore(); runs != nil {
			status, err := runs.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get run store status", err)
			}
			iocache.PrintRunStatus(os.Stdout, status)
		}
	},
}

// storeClearCmd clears stored data.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove saved score tables, run history or both",
	Long: `Delete stored data from the configured backends.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables
For Redis: Deletes every key under the store prefix

WARNING: Clearing runs cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  courseload store export --output-file backup
  courseload store clear --target runs

  # Force recomputation of every score table
  courseload store clear --target tables`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		target := strings.ToLower(viper.GetString("target"))
		if target != "tables" && target != "runs" && target != "all" {
			contract.LogFatal("Invalid --target", fmt.Errorf("must be tables, runs or all (received %q)", target))
		}
		if target != "runs" {
			path := sqlitePath(cfg.TableDBConnect, iocache.GetTableDBFilePath())
			if err := iocache.ClearTables(cfg.TableBackend, path, cfg.TableDBConnect); err != nil {
				contract.LogFatal("Failed to clear score tables", err)
			}
			fmt.Println("Score tables cleared successfully.")
		}
		if target != "tables" {
			path := sqlitePath(cfg.StoreDBConnect, iocache.GetRunDBFilePath())
			if err := iocache.ClearRuns(cfg.StoreBackend, path, cfg.StoreDBConnect); err != nil {
				contract.LogFatal("Failed to clear run history", err)
			}
			fmt.Println("Run history cleared successfully.")
		}
	},
}

// storeExportCmd exports run history to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet files named after --output-file:

  <output-file>.runs.parquet             run metadata
  <output-file>.subject_scores.parquet   burnout factors per subject and run
  <output-file>.recommendations.parquet  ranked recommendations per round

Examples:
  courseload store export --output-file courseload
  duckdb -c "SELECT * FROM read_parquet('courseload.runs.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportRuns(os.Stdout, iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the run store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run run store schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  courseload store migrate

  # Rollback to initial state
  courseload store migrate --target-version 0`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		before, after, err := iocache.MigrateRuns(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Printf("Run store migrated from version %d to %d.\n", before, after)
	},
}
