package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/everylot/internal/bot"
	"github.com/evcraddock/everylot/internal/post"
)

func newValidateCmd() *cobra.Command {
	var (
		limit int
		out   string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Find lots whose post would be too long",
		Long: "Compose the post of every lot and write those longer than the limit " +
			"(counted in user-perceived characters) to a report file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, limit, out)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum post length (default from config, 300)")
	cmd.Flags().StringVar(&out, "out", "long_posts.txt", "report file")

	return cmd
}

func runValidate(cmd *cobra.Command, limit int, out string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.LengthLimit
	}

	database, repo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeDB(database)

	composer, err := post.NewComposer(post.Config{PrintFormat: cfg.PrintFormat})
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Closing report", "path", out, "error", cerr)
		}
	}()

	b := bot.New(bot.Deps{Store: repo, Composer: composer})
	n, err := b.Validate(cmd.Context(), f, limit)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"too_long": n,
			"limit":    limit,
			"report":   out,
		})
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d posts longer than %d characters, see %s\n", n, limit, out)
	return err
}
