package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/everylot/internal/importer"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.shp>",
		Short: "Load parcels from a shapefile",
		Long: "Load parcels from a shapefile and its .dbf attribute table into the dataset. " +
			"Lots already in the dataset are updated and keep their posted state.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			database, repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer closeDB(database)

			n, err := importer.Import(cmd.Context(), args[0], repo, importer.DefaultMapping())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d lots into %s\n", n, cfg.DatabasePath)
			return err
		},
	}
}
