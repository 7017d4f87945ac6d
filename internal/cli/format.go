package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/everylot/internal/lot"
	"github.com/evcraddock/everylot/internal/zoning"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printLotSummary prints a lot's stored fields in text format.
func printLotSummary(w io.Writer, l *lot.Lot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "  %s:\t%s\n", label, value)
		}
	}

	fmt.Fprintf(tw, "Lot #%d\n", l.ID)
	row("Address", l.AddressText())
	if code := l.ZoningCode(); code != "" {
		row("Zoning", zoning.Format(code))
	}
	row("Land", formatDollars(l.LandValue))
	row("Improvement", formatDollars(l.ImprovementValue))
	row("Neighborhood", deref(l.Neighborhood))
	row("Zip", deref(l.Zipcode))
	if l.Acreage != nil {
		row("Acreage", strconv.FormatFloat(*l.Acreage, 'f', -1, 64))
	}
	if l.HasCoordinates() {
		row("Location", fmt.Sprintf("%g, %g", l.Lat, l.Lon))
	}
	row("Parcels", l.ParcelIDs())
	if l.IsPosted {
		posted := "yes"
		if l.PostDate != nil {
			posted += " on " + l.PostDate.Format(lot.DateLayout)
		}
		row("Posted", posted)
		row("Post", deref(l.PostURL))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing lot: %w", err)
	}
	return nil
}

// formatDollars formats a whole-dollar amount with commas, or "" when
// absent.
func formatDollars(v *float64) string {
	if v == nil {
		return ""
	}
	return "$" + formatCount(int(*v))
}

// formatCount formats a number with commas.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	if len(s) > 3 {
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		parts = append([]string{s}, parts...)
		s = strings.Join(parts, ",")
	}

	if neg {
		return "-" + s
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
