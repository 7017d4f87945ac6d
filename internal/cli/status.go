package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many lots are left to post",
		Args:  cobra.NoArgs,
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

			counts, err := repo.Count(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, counts)
			}

			_, err = fmt.Fprintf(out, "Database: %s\nLots:     %s\nPosted:   %s\nEligible: %s\n",
				cfg.DatabasePath, formatCount(counts.Total), formatCount(counts.Posted), formatCount(counts.Eligible))
			return err
		},
	}
}
