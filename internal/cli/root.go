// Package cli defines the cobra command tree for everylot.
package cli

import (
	"database/sql"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evcraddock/everylot/internal/config"
	"github.com/evcraddock/everylot/internal/db"
	"github.com/evcraddock/everylot/internal/logging"
	"github.com/evcraddock/everylot/internal/lot"
)

var (
	flagFormat      string
	flagDB          string
	flagConfig      string
	flagEnvFile     string
	flagVerbose     bool
	flagMetricsFile string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "everylot",
		Short: "Post every lot in the city, one at a time",
		Long: "A bot that picks a parcel nobody has posted yet, describes it with its " +
			"Street View image, and publishes it to Bluesky.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(flagVerbose)
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.local/share/everylot/lots.db)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/everylot/config.yaml)")
	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file (default: .env)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	root.AddCommand(
		newPostCmd(),
		newShowCmd(),
		newValidateCmd(),
		newImportCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{File: flagConfig, EnvFile: flagEnvFile})
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}
	if flagMetricsFile != "" {
		cfg.MetricsFile = flagMetricsFile
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openRepo opens the dataset named by cfg.
func openRepo(cfg *config.Config) (*sql.DB, *lot.Repository, error) {
	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, &lot.StorageError{Op: "opening dataset", Err: err}
	}
	return database, lot.NewRepository(database), nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		slog.Warn("Closing database", "error", err)
	}
}
