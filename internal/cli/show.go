package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/everylot/internal/lot"
	"github.com/evcraddock/everylot/internal/post"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a lot and its post",
		Long:  "Show a lot's stored fields and the post that would be published for it. Nothing is posted or recorded.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

type showResponse struct {
	Lot   *lot.Lot    `json:"lot"`
	Draft *post.Draft `json:"draft"`
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid lot ID: %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, repo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeDB(database)

	l, err := repo.Select(cmd.Context(), &id)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("lot %d: %w", id, lot.ErrNotFound)
	}

	composer, err := post.NewComposer(post.Config{PrintFormat: cfg.PrintFormat})
	if err != nil {
		return err
	}
	draft, err := composer.Compose(l)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, showResponse{Lot: l, Draft: draft})
	}

	if err := printLotSummary(out, l); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%s\n", draft.Status)
	return err
}
