package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rivo/uniseg"

	"github.com/evcraddock/everylot/internal/zoning"
)

// Validate composes the post of every lot in id order and writes those
// longer than limit grapheme clusters to w. It returns how many were too
// long. A lot that fails to compose aborts the scan.
func (b *Bot) Validate(ctx context.Context, w io.Writer, limit int) (int, error) {
	ids, err := b.store.IDs(ctx)
	if err != nil {
		return 0, err
	}

	long := 0
	unknown := map[string]int{}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return long, err
		}

		l, err := b.store.Select(ctx, &id)
		if err != nil {
			return long, err
		}
		if l == nil {
			continue
		}

		draft, err := b.composer.Compose(l)
		if err != nil {
			return long, fmt.Errorf("composing lot %d: %w", id, err)
		}

		if code := l.ZoningCode(); code != "" && !zoning.Known(code) {
			unknown[code]++
		}

		n := uniseg.GraphemeClusterCount(draft.Status)
		if n <= limit {
			continue
		}
		long++
		if _, err := fmt.Fprintf(w, "ID: %d, length: %d\n%s\n\n", id, n, draft.Status); err != nil {
			return long, fmt.Errorf("writing report: %w", err)
		}
	}

	for code, n := range unknown {
		slog.WarnContext(ctx, "Unknown zoning code", "code", code, "lots", n)
	}
	slog.InfoContext(ctx, "Validated posts", "lots", len(ids), "too_long", long, "limit", limit)

	return long, nil
}
