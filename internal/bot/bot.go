// Package bot runs the select, compose, publish and record pipeline for a
// single lot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rivo/uniseg"

	"github.com/evcraddock/everylot/internal/address"
	"github.com/evcraddock/everylot/internal/bluesky"
	"github.com/evcraddock/everylot/internal/lot"
	"github.com/evcraddock/everylot/internal/metrics"
	"github.com/evcraddock/everylot/internal/post"
	"github.com/evcraddock/everylot/internal/streetview"
)

// Outcome is how a run ended.
type Outcome string

// Run outcomes, also used as the metrics label.
const (
	OutcomePosted   Outcome = "posted"
	OutcomeNoLot    Outcome = "no_lot"
	OutcomeDryRun   Outcome = "dry_run"
	OutcomeNoImage  Outcome = "skipped_no_image"
	OutcomeDisabled Outcome = "posting_disabled"
	OutcomeError    Outcome = "error"
)

// Store is the dataset the bot reads lots from and records posts in.
type Store interface {
	Select(ctx context.Context, id *int64) (*lot.Lot, error)
	MarkPosted(ctx context.Context, id int64, ref string) error
	IDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (*lot.Counts, error)
}

// ImageFetcher returns a picture of a location.
type ImageFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Poster publishes a post and returns a reference to it.
type Poster interface {
	Post(ctx context.Context, text string, image []byte, alt string) (string, error)
}

// Deps are the collaborators of a Bot. Images and Poster may be nil when
// the corresponding service is not configured.
type Deps struct {
	Store        Store
	Composer     *post.Composer
	Images       ImageFetcher
	Poster       Poster
	SearchFormat string
	Metrics      *metrics.Metrics
}

// Bot runs the pipeline.
type Bot struct {
	store        Store
	composer     *post.Composer
	images       ImageFetcher
	poster       Poster
	searchFormat string
	metrics      *metrics.Metrics
}

// New creates a Bot.
func New(d Deps) *Bot {
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Bot{
		store:        d.Store,
		composer:     d.Composer,
		images:       d.Images,
		poster:       d.Poster,
		searchFormat: d.SearchFormat,
		metrics:      m,
	}
}

// Options control one run.
type Options struct {
	ID        *int64 // post this lot instead of a random eligible one
	DryRun    bool   // compose but do not publish or record
	NoImage   bool   // skip the Street View fetch
	SaveImage bool   // write the image to ImageDir
	ImageDir  string
}

// Result describes a finished run.
type Result struct {
	Outcome   Outcome     `json:"outcome"`
	Lot       *lot.Lot    `json:"lot,omitempty"`
	Draft     *post.Draft `json:"draft,omitempty"`
	ImagePath string      `json:"image_path,omitempty"`
	Ref       string      `json:"ref,omitempty"`
}

// Run selects a lot, composes its post and publishes it. The lot is marked
// posted only after the poster returns a reference.
func (b *Bot) Run(ctx context.Context, opts Options) (*Result, error) {
	res, err := b.run(ctx, opts)
	if err != nil {
		b.metrics.Outcome(string(OutcomeError))
		return nil, err
	}
	b.metrics.Outcome(string(res.Outcome))
	return res, nil
}

func (b *Bot) run(ctx context.Context, opts Options) (*Result, error) {
	if counts, err := b.store.Count(ctx); err == nil {
		b.metrics.EligibleLots.Set(float64(counts.Eligible))
	} else {
		slog.WarnContext(ctx, "Counting lots", "error", err)
	}

	start := time.Now()
	l, err := b.store.Select(ctx, opts.ID)
	b.metrics.Observe("select", start)
	if err != nil {
		return nil, err
	}
	if l == nil {
		if opts.ID != nil {
			slog.InfoContext(ctx, "No lot with id", "id", *opts.ID)
		} else {
			slog.InfoContext(ctx, "No eligible lots left")
		}
		return &Result{Outcome: OutcomeNoLot}, nil
	}

	log := slog.With("lot", l.ID)
	log.InfoContext(ctx, "Selected lot", "address", l.AddressText())

	res := &Result{Lot: l}

	var img []byte
	if !opts.NoImage && b.images != nil {
		img, err = b.fetchImage(ctx, l)
		if err != nil {
			return nil, err
		}
	}

	draft, err := b.composer.Compose(l)
	if err != nil {
		return nil, err
	}
	res.Draft = draft
	b.metrics.PostLength.Set(float64(uniseg.GraphemeClusterCount(draft.Status)))
	log.DebugContext(ctx, "Composed post", "status", draft.Status)

	if opts.SaveImage && img != nil {
		path, err := saveImage(opts.ImageDir, l.ID, img)
		if err != nil {
			return nil, err
		}
		res.ImagePath = path
		log.InfoContext(ctx, "Saved image", "path", path)
	}

	if opts.DryRun {
		res.Outcome = OutcomeDryRun
		return res, nil
	}

	if img == nil {
		log.WarnContext(ctx, "No image, skipping post")
		res.Outcome = OutcomeNoImage
		return res, nil
	}

	if b.poster == nil {
		log.WarnContext(ctx, "Posting disabled, lot not recorded")
		res.Outcome = OutcomeDisabled
		return res, nil
	}

	alt := bluesky.AltText(address.Sanitize(l.AddressText()), l.ParcelIDs())

	start = time.Now()
	ref, err := b.poster.Post(ctx, draft.Status, img, alt)
	b.metrics.Observe("post", start)
	if err != nil {
		return nil, fmt.Errorf("posting lot %d: %w", l.ID, err)
	}
	if ref == "" {
		return nil, fmt.Errorf("posting lot %d: no post reference returned", l.ID)
	}
	res.Ref = ref

	start = time.Now()
	err = b.store.MarkPosted(ctx, l.ID, ref)
	b.metrics.Observe("mark_posted", start)
	if err != nil {
		return nil, err
	}

	b.metrics.LastSuccess.SetToCurrentTime()
	log.InfoContext(ctx, "Posted lot", "ref", ref)

	res.Outcome = OutcomePosted
	return res, nil
}

// fetchImage returns nil without error when the lot cannot be located or
// Street View has no imagery for it.
func (b *Bot) fetchImage(ctx context.Context, l *lot.Lot) ([]byte, error) {
	location, err := streetview.Location(l, b.searchFormat)
	if errors.Is(err, streetview.ErrNoLocation) {
		slog.WarnContext(ctx, "Lot has no location for an image", "lot", l.ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := b.images.Fetch(ctx, location)
	b.metrics.Observe("image", start)
	if errors.Is(err, streetview.ErrNoImagery) {
		slog.WarnContext(ctx, "No street view imagery", "lot", l.ID, "location", location)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching image for lot %d: %w", l.ID, err)
	}
	return img, nil
}

func saveImage(dir string, id int64, img []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}
	path := filepath.Join(dir, "image_"+strconv.FormatInt(id, 10)+".jpg")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return path, nil
}
