// Package importer loads parcel shapefiles into the lots dataset.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/evcraddock/everylot/internal/lot"
)

// Mapping names the DBF column holding each lot field. An empty name
// means the field is not imported.
type Mapping struct {
	ID               string
	Address          string
	Zoning           string
	LandValue        string
	ImprovementValue string
	Neighborhood     string
	Zipcode          string
	Acreage          string
	ParcelIDs        string
}

// DefaultMapping matches the Hamilton County auditor parcel layer.
func DefaultMapping() Mapping {
	return Mapping{
		ID:               "OBJECTID",
		Address:          "ADDRESS",
		Zoning:           "ZONING",
		LandValue:        "MKT_LAND",
		ImprovementValue: "MKT_IMPR",
		Neighborhood:     "NBHD",
		Zipcode:          "ZIPCODE",
		Acreage:          "ACREAGE",
		ParcelIDs:        "PARCELID",
	}
}

// Inserter stores lots in one transaction.
type Inserter interface {
	InsertAll(ctx context.Context, lots []*lot.Lot) error
}

// Import reads the shapefile at path and its .dbf attribute table and
// stores one lot per record. A lot's position is the centre of its
// shape's bounding box, assumed to be in WGS84 degrees. Records without
// an id column value are numbered by their position in the file, starting
// at 1. Existing lots keep their posted state.
func Import(ctx context.Context, path string, store Inserter, m Mapping) (int, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".shp") {
		return 0, fmt.Errorf("opening shapefile: %s is not a .shp file", path)
	}

	r, err := shp.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening shapefile: %w", err)
	}
	defer func() {
		_ = r.Close()
	}()

	cols := columnIndex(r.Fields())
	if len(cols) == 0 {
		return 0, fmt.Errorf("opening shapefile: no attribute table next to %s", path)
	}

	var lots []*lot.Lot
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		row, shape := r.Shape()
		rec := record{r: r, row: row, cols: cols}

		l, err := rec.lot(m)
		if err != nil {
			return 0, fmt.Errorf("reading record %d: %w", row, err)
		}
		if _, null := shape.(*shp.Null); !null {
			box := shape.BBox()
			l.Lon = (box.MinX + box.MaxX) / 2
			l.Lat = (box.MinY + box.MaxY) / 2
		}
		lots = append(lots, l)
	}
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("reading shapefile: %w", err)
	}

	if err := store.InsertAll(ctx, lots); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Imported lots", "path", path, "lots", len(lots))
	return len(lots), nil
}

func columnIndex(fields []shp.Field) map[string]int {
	cols := make(map[string]int, len(fields))
	for i, f := range fields {
		cols[strings.ToUpper(f.String())] = i
	}
	return cols
}

// record is one row of the attribute table.
type record struct {
	r    *shp.Reader
	row  int
	cols map[string]int
}

func (rec record) lot(m Mapping) (*lot.Lot, error) {
	l := &lot.Lot{ID: int64(rec.row) + 1}

	if s := rec.text(m.ID); s != nil {
		id, err := strconv.ParseInt(strings.TrimSuffix(*s, ".0"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", m.ID, err)
		}
		l.ID = id
	}

	l.Address = rec.text(m.Address)
	l.Zoning = rec.text(m.Zoning)
	l.Neighborhood = rec.text(m.Neighborhood)
	l.Zipcode = rec.text(m.Zipcode)
	l.AuditorParcelIDs = rec.text(m.ParcelIDs)

	var err error
	if l.LandValue, err = rec.number(m.LandValue); err != nil {
		return nil, err
	}
	if l.ImprovementValue, err = rec.number(m.ImprovementValue); err != nil {
		return nil, err
	}
	if l.Acreage, err = rec.number(m.Acreage); err != nil {
		return nil, err
	}

	return l, nil
}

// text returns the trimmed value of column, or nil when the column is
// unmapped, missing or blank.
func (rec record) text(column string) *string {
	if column == "" {
		return nil
	}
	i, ok := rec.cols[strings.ToUpper(column)]
	if !ok {
		return nil
	}
	// DBF pads with spaces; some writers pad with NUL.
	s := strings.Trim(rec.r.ReadAttribute(rec.row, i), " \x00")
	if s == "" {
		return nil
	}
	return &s
}

func (rec record) number(column string) (*float64, error) {
	s := rec.text(column)
	if s == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", column, err)
	}
	return &f, nil
}
