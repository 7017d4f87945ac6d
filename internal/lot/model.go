// Package lot provides the lot domain model and dataset access.
package lot

import (
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// Lot is one parcel row as it was when selected.
type Lot struct {
	ID               int64      `json:"id"`
	Address          *string    `json:"address,omitempty"`
	Zoning           *string    `json:"zoning,omitempty"`
	LandValue        *float64   `json:"land_value,omitempty"`
	ImprovementValue *float64   `json:"improvement_value,omitempty"`
	Neighborhood     *string    `json:"neighborhood,omitempty"`
	Zipcode          *string    `json:"zipcode,omitempty"`
	Acreage          *float64   `json:"acreage,omitempty"`
	Lat              float64    `json:"lat"`
	Lon              float64    `json:"lon"`
	AuditorParcelIDs *string    `json:"auditor_parcel_ids,omitempty"`
	IsPosted         bool       `json:"is_posted"`
	PostURL          *string    `json:"post_url,omitempty"`
	PostDate         *time.Time `json:"post_date,omitempty"`
}

// Columns lists the dataset columns in scan order. These are also the
// field names a post template may reference.
var Columns = []string{
	"id", "address", "zoning", "land_value", "improvement_value", "neighborhood",
	"zipcode", "acreage", "lat", "lon", "auditor_parcel_ids", "is_posted", "post_url", "post_date",
}

// Value is a single field of a lot as seen by text templates.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
	Null    bool
}

// Fields returns every column of the lot keyed by column name.
func (l *Lot) Fields() map[string]Value {
	posted := 0.0
	if l.IsPosted {
		posted = 1
	}
	return map[string]Value{
		"id":                 {Number: float64(l.ID), Numeric: true},
		"address":            text(l.Address),
		"zoning":             text(l.Zoning),
		"land_value":         number(l.LandValue),
		"improvement_value":  number(l.ImprovementValue),
		"neighborhood":       text(l.Neighborhood),
		"zipcode":            text(l.Zipcode),
		"acreage":            number(l.Acreage),
		"lat":                {Number: l.Lat, Numeric: true},
		"lon":                {Number: l.Lon, Numeric: true},
		"auditor_parcel_ids": text(l.AuditorParcelIDs),
		"is_posted":          {Number: posted, Numeric: true},
		"post_url":           text(l.PostURL),
		"post_date":          date(l.PostDate),
	}
}

// AddressText returns the raw address, or "" when absent.
func (l *Lot) AddressText() string {
	return deref(l.Address)
}

// ZoningCode returns the raw zoning code, or "" when absent.
func (l *Lot) ZoningCode() string {
	return deref(l.Zoning)
}

// ParcelIDs returns the auditor parcel ids, or "" when absent.
func (l *Lot) ParcelIDs() string {
	return deref(l.AuditorParcelIDs)
}

// HasCoordinates reports whether the lot carries a non-zero position.
func (l *Lot) HasCoordinates() bool {
	return l.Lat != 0 || l.Lon != 0
}

// String renders a numeric value the way it is stored: integral values
// without a decimal point, others with the shortest exact decimal.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	if !v.Numeric {
		return v.Text
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

func text(s *string) Value {
	if s == nil {
		return Value{Null: true}
	}
	return Value{Text: *s}
}

func number(f *float64) Value {
	if f == nil {
		return Value{Numeric: true, Null: true}
	}
	return Value{Number: *f, Numeric: true}
}

func date(t *time.Time) Value {
	if t == nil {
		return Value{Null: true}
	}
	return Value{Text: t.Format(DateLayout)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DateLayout is the format of post_date.
const DateLayout = "2006-01-02"

// errMissingID is returned by scanLot when a row has no primary key.
var errMissingID = errors.New("row has no id")

// scanLot scans a lot from a database row in Columns order.
func scanLot(row interface{ Scan(...interface{}) error }) (*Lot, error) {
	var l Lot
	var id sql.NullInt64
	var addr, zoning, neighborhood, zipcode, parcelIDs, postURL sql.NullString
	var postDate sql.NullTime
	var landValue, improvementValue, acreage, lat, lon sql.NullFloat64
	var posted sql.NullBool

	err := row.Scan(
		&id, &addr, &zoning, &landValue, &improvementValue, &neighborhood,
		&zipcode, &acreage, &lat, &lon, &parcelIDs, &posted, &postURL, &postDate,
	)
	if err != nil {
		return nil, err
	}

	if !id.Valid {
		return nil, errMissingID
	}
	l.ID = id.Int64

	if addr.Valid {
		l.Address = &addr.String
	}
	if zoning.Valid {
		l.Zoning = &zoning.String
	}
	if landValue.Valid {
		l.LandValue = &landValue.Float64
	}
	if improvementValue.Valid {
		l.ImprovementValue = &improvementValue.Float64
	}
	if neighborhood.Valid {
		l.Neighborhood = &neighborhood.String
	}
	if zipcode.Valid {
		l.Zipcode = &zipcode.String
	}
	if acreage.Valid {
		l.Acreage = &acreage.Float64
	}
	if lat.Valid {
		l.Lat = lat.Float64
	}
	if lon.Valid {
		l.Lon = lon.Float64
	}
	if parcelIDs.Valid {
		l.AuditorParcelIDs = &parcelIDs.String
	}
	l.IsPosted = posted.Valid && posted.Bool
	if postURL.Valid {
		l.PostURL = &postURL.String
	}
	if postDate.Valid {
		l.PostDate = &postDate.Time
	}

	return &l, nil
}
