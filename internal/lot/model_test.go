package lot

import (
	"testing"
	"time"
)

func TestFields(t *testing.T) {
	posted := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	l := &Lot{
		ID:               12,
		Address:          str("1 MAIN ST"),
		LandValue:        num(12500),
		Acreage:          num(0.25),
		Lat:              39.5,
		IsPosted:         true,
		PostDate:         &posted,
		AuditorParcelIDs: str("001-0001-0001-00"),
	}

	fields := l.Fields()
	if len(fields) != len(Columns) {
		t.Fatalf("got %d fields, want %d", len(fields), len(Columns))
	}
	for _, c := range Columns {
		if _, ok := fields[c]; !ok {
			t.Errorf("missing field %q", c)
		}
	}

	tests := []struct {
		field string
		want  string
	}{
		{"id", "12"},
		{"address", "1 MAIN ST"},
		{"land_value", "12500"},
		{"acreage", "0.25"},
		{"lat", "39.5"},
		{"lon", "0"},
		{"zoning", ""},
		{"improvement_value", ""},
		{"is_posted", "1"},
		{"post_date", "2026-01-02"},
		{"auditor_parcel_ids", "001-0001-0001-00"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := fields[tt.field].String(); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
			}
		})
	}

	if !fields["improvement_value"].Null || !fields["improvement_value"].Numeric {
		t.Error("absent improvement_value should be a null number")
	}
	if fields["address"].Numeric {
		t.Error("address should not be numeric")
	}
}

func TestAccessors(t *testing.T) {
	empty := &Lot{ID: 1}
	if empty.AddressText() != "" || empty.ZoningCode() != "" || empty.ParcelIDs() != "" {
		t.Error("absent text fields should read as empty")
	}
	if empty.HasCoordinates() {
		t.Error("zero coordinates reported as present")
	}

	l := &Lot{ID: 2, Address: str("A"), Zoning: str("SF-4"), Lon: -84.5}
	if l.AddressText() != "A" || l.ZoningCode() != "SF-4" {
		t.Errorf("accessors = %q, %q", l.AddressText(), l.ZoningCode())
	}
	if !l.HasCoordinates() {
		t.Error("non-zero longitude not reported")
	}
}
