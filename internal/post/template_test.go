package post

import (
	"errors"
	"testing"

	"github.com/evcraddock/everylot/internal/lot"
)

func TestExecute(t *testing.T) {
	fields := map[string]lot.Value{
		"name":   {Text: "Vine"},
		"int":    {Number: 1234567, Numeric: true},
		"small":  {Number: 999, Numeric: true},
		"frac":   {Number: 1234.5, Numeric: true},
		"neg":    {Number: -5000, Numeric: true},
		"acres":  {Number: 0.25, Numeric: true},
		"absent": {Numeric: true, Null: true},
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"literal only", "hello", "hello"},
		{"text", "{name} St", "Vine St"},
		{"plain number", "{int}", "1234567"},
		{"grouped number", "${int:,}", "$1,234,567"},
		{"grouped small number", "{small:,}", "999"},
		{"grouped fraction", "{frac:,}", "1,234.5"},
		{"grouped negative", "{neg:,}", "-5,000"},
		{"fixed precision", "{acres:.2f}", "0.25"},
		{"fixed precision rounding", "{frac:.0f}", "1234"},
		{"grouped fixed precision", "{int:,.2f}", "1,234,567.00"},
		{"absent with spec", "[{absent:,}]", "[]"},
		{"escaped braces", "{{name}} is {name}", "{name} is Vine"},
		{"closing escape", "}}", "}"},
		{"repeated field", "{name}/{name}", "Vine/Vine"},
		{"newlines", "{name}\n\n{small}", "Vine\n\n999"},
		{"empty template", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.src)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := tmpl.Execute(fields)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	fields := map[string]lot.Value{
		"name": {Text: "Vine"},
	}

	tests := []struct {
		name      string
		src       string
		wantField string
	}{
		{"missing field", "{nope}", "nope"},
		{"grouping on text", "{name:,}", "name"},
		{"spaces are part of the name", "{ name }", " name "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.src)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, err = tmpl.Execute(fields)
			var ce *CompositionError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CompositionError, got %v", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ce.Field, tt.wantField)
			}
		})
	}
}

func TestParseTemplateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed brace", "{address"},
		{"stray closing brace", "address}"},
		{"empty placeholder", "{}"},
		{"bad spec", "{land_value:x}"},
		{"bad precision", "{land_value:.zf}"},
		{"spec without f", "{land_value:.2}"},
		{"nested", "{a{b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate(tt.src)
			var ce *CompositionError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CompositionError, got %v", err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	tmpl, err := ParseTemplate("{address}, {zipcode} {{x}} {land_value:,}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := tmpl.Fields()
	want := []string{"address", "zipcode", "land_value"}
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fields[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
