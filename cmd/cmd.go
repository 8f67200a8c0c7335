// Package cmd defines the command-line interface for benchboard.
package cmd

import (
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(systemsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the list subcommand to the parent benchmark command
	benchmarkCmd.AddCommand(benchmarkListCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("env", contract.DefaultEnv, "Deployment environment reported by the info endpoint")
	rootCmd.PersistentFlags().String("config-dir", contract.DefaultConfigDir, "Directory holding benchmark config files (yaml or json)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address the HTTP server listens on")
	serveCmd.Flags().String("auth-url", "", "Login URL reported to clients by the info endpoint")
	serveCmd.Flags().String("read-timeout", contract.DefaultReadTimeout.String(), "HTTP read timeout")
	serveCmd.Flags().String("write-timeout", contract.DefaultWriteTimeout.String(), "HTTP write timeout")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of benchmarkCmd to Viper
	benchmarkCmd.Flags().String("view", "", "Only print this view (orig, or a configured view name)")
	benchmarkCmd.Flags().String("rank-by", "", "Column label to rank systems by (default: row mean)")
	benchmarkCmd.Flags().IntP("limit", "l", 0, "Number of systems to display per view (0 = all)")
	if err := viper.BindPFlags(benchmarkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding benchmark flags", err)
	}

	// Bind the paging flag of systemsCmd to Viper; query filters are read from the command
	systemsCmd.Flags().Int("page-size", contract.DefaultPageSize, "Number of systems per page")
	if err := viper.BindPFlag("page-size", systemsCmd.Flags().Lookup("page-size")); err != nil {
		contract.LogFatal("Error binding systems flags", err)
	}
	addSystemQueryFlags(systemsCmd.Flags())

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
