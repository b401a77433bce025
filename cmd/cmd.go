// Package cmd defines the command-line interface for courseload.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(hashKeyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("catalog", contract.DefaultCatalogPath, "Subject catalog file or directory (subjects.yaml or subjects.csv)")
	rootCmd.PersistentFlags().String("profiles-dir", contract.DefaultProfilesDir, "Directory holding student_<nuid> profile files")
	rootCmd.PersistentFlags().Bool("strict", false, "Reject malformed profile entries instead of skipping them")
	rootCmd.PersistentFlags().Bool("detail", false, "Print the workload, mismatch and stress factors per subject")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("semester", 0, "Current semester of the student (0 = use the profile)")
	rootCmd.PersistentFlags().String("interests", "", "Comma-separated interests added to the profile's interests")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for run history")
	rootCmd.PersistentFlags().String("table-backend", string(schema.SQLiteBackend), "Score table backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("table-db-connect", "", "Connection string for the score table store (must differ from store-db-connect)")
	rootCmd.PersistentFlags().String("table-ttl", "", "Maximum age of a stored score table before it is recomputed (0 = never expires)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// scores --all reads the flag directly since it is not part of the shared config
	scoresCmd.Flags().Bool("all", false, "Score every profile in --profiles-dir and print a summary")

	// Bind all flags of sessionCmd to Viper
	sessionCmd.Flags().StringArray("more", nil, "Comma-separated interests added in a later round (repeatable)")
	sessionCmd.Flags().Int("rounds", 0, "Number of rounds (0 = one plus the number of --more flags)")
	if err := viper.BindPFlags(sessionCmd.Flags()); err != nil {
		contract.LogFatal("Error binding session flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("student", "", "Also gate on the burnout of this student's candidate subjects")
	checkCmd.Flags().String("max-burnout", "", "Burnout probability above which the student gate fails (0.0 to 1.0)")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address for the HTTP API to listen on")
	serveCmd.Flags().String("api-key-hash", "", "Bcrypt hash of the API key required in X-API-Key (see hash-key)")
	serveCmd.Flags().String("log-format", "text", "Server log format: text or json")
	serveCmd.Flags().String("log-level", "info", "Server log level: debug or info or warn or error")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of storeClearCmd and storeMigrateCmd to Viper
	storeClearCmd.Flags().String("target", "all", "What to clear: tables or runs or all")
	if err := viper.BindPFlags(storeClearCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store clear flags", err)
	}
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
