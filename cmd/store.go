package cmd

import (
	"fmt"
	"os"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/iocache"
	"github.com/benchboard/benchboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSettings is the minimal configuration needed by store commands.
type storeSettings struct {
	backend    schema.DatabaseBackend
	connStr    string
	outputFile string
	useColors  bool
}

var store = &storeSettings{}

// loadStoreSettings resolves the store backend without the full shared setup.
func loadStoreSettings() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	useColors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}

	store.backend = backend
	store.connStr = connStr
	store.outputFile = viper.GetString("output-file")
	store.useColors = useColors
	return nil
}

// storeSetup loads store settings and opens the system store.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := loadStoreSettings(); err != nil {
		return err
	}
	if err := iocache.InitStores(store.backend, store.connStr); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// storeSettingsOnly loads store settings without opening the store, so that
// migrations and clears can run against a fresh or broken database.
func storeSettingsOnly(_ *cobra.Command, _ []string) error {
	return loadStoreSettings()
}

// storeCmd focuses on system store management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the system store",
	Long: `Manage the database holding submitted systems and their outputs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  export  - Export systems to Parquet for analytics
  clear   - Remove all stored systems
  migrate - Run database schema migrations`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, connection status, number of systems, outputs and private
systems, the newest and oldest submission times and the size of every table.

Examples:
  benchboard store status`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := storeManager.GetSystemStore().GetStatus(rootCtx)
		if err != nil {
			return fmt.Errorf("failed to get store status: %w", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status, store.useColors)
		return nil
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored systems and outputs",
	Long: `Delete all stored systems and their outputs.

For SQLite the database file is removed. For MySQL and PostgreSQL the tables
and the migration history are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  benchboard store export --output-file backup.parquet
  benchboard store clear`,
	PreRunE: storeSettingsOnly,
	RunE: func(_ *cobra.Command, _ []string) error {
		dbFilePath := contract.GetDBFilePath()
		if store.backend == schema.SQLiteBackend && store.connStr != "" {
			dbFilePath = store.connStr
		}
		if err := iocache.ClearStore(store.backend, dbFilePath, store.connStr); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		fmt.Println("Store cleared successfully.")
		return nil
	},
}

// storeMigrateCmd runs database migrations for the system store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the system store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  benchboard store migrate

  # Rollback everything
  benchboard store migrate --target-version 0`,
	PreRunE: storeSettingsOnly,
	RunE: func(_ *cobra.Command, _ []string) error {
		msg, err := iocache.MigrateStore(store.backend, store.connStr, viper.GetInt("target-version"))
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Println(msg)
		return nil
	},
}

// storeExportCmd exports systems to a Parquet file.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored systems to Parquet for BI tools and analytics",
	Long: `Export every stored system to a Parquet file, one row per system with its
overall results JSON-encoded.

Requires: --output-file parameter

Examples:
  benchboard store export --output-file systems.parquet
  duckdb -c "SELECT system_name, dataset_name, results FROM read_parquet('systems.parquet')"`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.ExecuteStoreExport(rootCtx, os.Stdout, storeManager.GetSystemStore(), store.outputFile)
	},
}
