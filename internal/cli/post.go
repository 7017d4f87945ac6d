package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evcraddock/everylot/internal/bluesky"
	"github.com/evcraddock/everylot/internal/bot"
	"github.com/evcraddock/everylot/internal/config"
	"github.com/evcraddock/everylot/internal/metrics"
	"github.com/evcraddock/everylot/internal/post"
	"github.com/evcraddock/everylot/internal/streetview"
)

type postFlags struct {
	id        int64
	dryRun    bool
	noImage   bool
	saveImage bool
	imageDir  string
}

func newPostCmd() *cobra.Command {
	var f postFlags

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post one lot",
		Long: "Select a random lot that has not been posted (or the one given with --id), " +
			"fetch its Street View image, publish it, and record it as posted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, f)
		},
	}

	cmd.Flags().Int64Var(&f.id, "id", 0, "post this lot instead of a random one")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "compose the post without publishing or recording it")
	cmd.Flags().BoolVar(&f.noImage, "no-image", false, "skip the Street View image")
	cmd.Flags().BoolVar(&f.saveImage, "save-image", false, "save the image as image_<id>.jpg")
	cmd.Flags().StringVar(&f.imageDir, "image-dir", "", "directory for --save-image (default from config)")

	return cmd
}

func runPost(cmd *cobra.Command, f postFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	m := metrics.New()
	deps := bot.Deps{
		Store:        repo,
		Composer:     composer,
		SearchFormat: cfg.SearchFormat,
		Metrics:      m,
	}

	if !f.noImage {
		images, err := newImageFetcher(cfg)
		if err != nil {
			return err
		}
		if images != nil {
			deps.Images = images
		}
	}

	if !f.dryRun && cfg.Bluesky.Enabled {
		poster, err := bluesky.NewClient(bluesky.Config{
			Host:       cfg.Bluesky.Host,
			Identifier: cfg.Bluesky.Identifier,
			Password:   cfg.Bluesky.Password,
		})
		if err != nil {
			return err
		}
		deps.Poster = poster
	}

	opts := bot.Options{
		ID:        cfg.StartID,
		DryRun:    f.dryRun,
		NoImage:   f.noImage,
		SaveImage: f.saveImage,
		ImageDir:  cfg.ImageDir,
	}
	if cmd.Flags().Changed("id") {
		opts.ID = &f.id
	}
	if f.imageDir != "" {
		opts.ImageDir = f.imageDir
	}

	res, runErr := bot.New(deps).Run(cmd.Context(), opts)

	if cfg.MetricsFile != "" {
		if err := m.WriteFile(cfg.MetricsFile); err != nil {
			slog.Warn("Writing metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), res)
	}
	return printResult(cmd.OutOrStdout(), res)
}

// newImageFetcher returns nil when no Google API key is configured.
func newImageFetcher(cfg *config.Config) (*streetview.Client, error) {
	if cfg.StreetView.APIKey == "" {
		slog.Warn("GOOGLE_API_KEY is not set, posting without images")
		return nil, nil
	}
	return streetview.NewClient(streetview.Config{
		APIKey: cfg.StreetView.APIKey,
		Pitch:  cfg.StreetView.Pitch,
		FOV:    cfg.StreetView.FOV,
		Size:   cfg.StreetView.Size,
	}, slog.Default())
}

func printResult(w io.Writer, res *bot.Result) error {
	var err error
	switch res.Outcome {
	case bot.OutcomeNoLot:
		_, err = fmt.Fprintln(w, "No lot to post.")
		return err
	case bot.OutcomePosted:
		_, err = fmt.Fprintf(w, "Posted lot #%d: %s\n", res.Lot.ID, res.Ref)
		return err
	case bot.OutcomeDryRun:
		_, err = fmt.Fprintf(w, "Dry run for lot #%d, nothing posted.\n\n", res.Lot.ID)
	case bot.OutcomeNoImage:
		_, err = fmt.Fprintf(w, "No image for lot #%d, nothing posted.\n\n", res.Lot.ID)
	case bot.OutcomeDisabled:
		_, err = fmt.Fprintf(w, "Posting disabled, lot #%d not recorded.\n\n", res.Lot.ID)
	}
	if err != nil {
		return err
	}
	if res.ImagePath != "" {
		if _, err := fmt.Fprintf(w, "Image: %s\n\n", res.ImagePath); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, res.Draft.Status)
	return err
}
