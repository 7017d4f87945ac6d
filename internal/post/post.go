// Package post turns a selected lot into the text of an announcement.
package post

import (
	"slices"

	"github.com/evcraddock/everylot/internal/address"
	"github.com/evcraddock/everylot/internal/lot"
	"github.com/evcraddock/everylot/internal/zoning"
)

// DefaultPrintFormat is the post text used when none is configured.
const DefaultPrintFormat = "{address}, {zipcode}\n\nZoning: {zoning}\n\n" +
	"Land Value: ${land_value:,}\n\nImprovement Value: ${improvement_value:,}\n\n" +
	"Neighborhood: {neighborhood}\n\nAcreage: {acreage}"

// Draft is a composed post that has not been published.
type Draft struct {
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Long   float64 `json:"long"`
}

// Config holds the composer settings.
type Config struct {
	PrintFormat string
}

// Composer renders lots with a fixed template.
type Composer struct {
	tmpl *Template
}

// NewComposer parses the configured print format, falling back to
// DefaultPrintFormat when it is empty. Every placeholder must name a lot
// column.
func NewComposer(cfg Config) (*Composer, error) {
	src := cfg.PrintFormat
	if src == "" {
		src = DefaultPrintFormat
	}
	tmpl, err := ParseTemplate(src)
	if err != nil {
		return nil, err
	}
	for _, name := range tmpl.Fields() {
		if !slices.Contains(lot.Columns, name) {
			return nil, &CompositionError{Field: name, Reason: "no such field"}
		}
	}
	return &Composer{tmpl: tmpl}, nil
}

// Compose builds the post for l.
func (c *Composer) Compose(l *lot.Lot) (*Draft, error) {
	status, err := c.tmpl.Execute(Fields(l))
	if err != nil {
		return nil, err
	}
	return &Draft{Status: status, Lat: l.Lat, Long: l.Lon}, nil
}

// Compose parses tmpl and builds the post for l in one step.
func Compose(l *lot.Lot, tmpl string) (*Draft, error) {
	c, err := NewComposer(Config{PrintFormat: tmpl})
	if err != nil {
		return nil, err
	}
	return c.Compose(l)
}

// Fields returns the rendering context for l: its raw columns with the
// address sanitized and the zoning code described. A lot without a zoning
// code keeps the raw (empty) value.
func Fields(l *lot.Lot) map[string]lot.Value {
	fields := l.Fields()

	if l.Address != nil {
		fields["address"] = lot.Value{Text: address.Sanitize(*l.Address)}
	}
	if code := l.ZoningCode(); code != "" {
		fields["zoning"] = lot.Value{Text: zoning.Format(code)}
	}

	return fields
}
