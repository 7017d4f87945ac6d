package post

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/evcraddock/everylot/internal/lot"
)

// Template is a parsed post format such as
//
//	{address}, {zipcode}\n\nLand Value: ${land_value:,}
//
// Placeholders name a lot field. A numeric field may carry a format spec
// after a colon: "," groups thousands, ".2f" fixes the precision, and
// ",.2f" does both. "{{" and "}}" produce literal braces.
type Template struct {
	src  string
	segs []segment
}

type segment struct {
	literal string
	field   string
	spec    spec
}

type spec struct {
	raw       string
	grouping  bool
	precision int // -1 when unset
}

var printer = message.NewPrinter(language.English)

// ParseTemplate parses src. Unbalanced braces, empty placeholders and
// unsupported format specs are reported as a *CompositionError.
func ParseTemplate(src string) (*Template, error) {
	t := &Template{src: src}

	var lit strings.Builder
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '{' && i+1 < len(src) && src[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '}':
			return nil, &CompositionError{Reason: "single '}' encountered in format string"}
		case c == '{':
			end := strings.IndexByte(src[i+1:], '}')
			if end < 0 {
				return nil, &CompositionError{Reason: "single '{' encountered in format string"}
			}
			body := src[i+1 : i+1+end]
			seg, err := parsePlaceholder(body)
			if err != nil {
				return nil, err
			}
			if lit.Len() > 0 {
				t.segs = append(t.segs, segment{literal: lit.String()})
				lit.Reset()
			}
			t.segs = append(t.segs, seg)
			i += end + 1
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		t.segs = append(t.segs, segment{literal: lit.String()})
	}

	return t, nil
}

func parsePlaceholder(body string) (segment, error) {
	name, raw, _ := strings.Cut(body, ":")
	if name == "" {
		return segment{}, &CompositionError{Reason: "empty placeholder"}
	}
	if strings.ContainsAny(name, "{") {
		return segment{}, &CompositionError{Field: name, Reason: "nested placeholder"}
	}

	sp, ok := parseSpec(raw)
	if !ok {
		return segment{}, &CompositionError{Field: name, Reason: "unsupported format spec " + strconv.Quote(raw)}
	}
	return segment{field: name, spec: sp}, nil
}

func parseSpec(raw string) (spec, bool) {
	sp := spec{raw: raw, precision: -1}
	rest := raw
	if strings.HasPrefix(rest, ",") {
		sp.grouping = true
		rest = rest[1:]
	}
	if rest == "" {
		return sp, true
	}
	if !strings.HasPrefix(rest, ".") || !strings.HasSuffix(rest, "f") {
		return spec{}, false
	}
	p, err := strconv.Atoi(rest[1 : len(rest)-1])
	if err != nil || p < 0 || p > 15 {
		return spec{}, false
	}
	sp.precision = p
	return sp, true
}

// Fields returns the placeholder names in order of appearance.
func (t *Template) Fields() []string {
	var names []string
	for _, s := range t.segs {
		if s.field != "" {
			names = append(names, s.field)
		}
	}
	return names
}

// String returns the source text of the template.
func (t *Template) String() string {
	return t.src
}

// Execute renders the template against fields. A placeholder with no
// matching field fails with a *CompositionError naming it.
func (t *Template) Execute(fields map[string]lot.Value) (string, error) {
	var b strings.Builder
	for _, s := range t.segs {
		if s.field == "" {
			b.WriteString(s.literal)
			continue
		}

		v, ok := fields[s.field]
		if !ok {
			return "", &CompositionError{Field: s.field, Reason: "no such field"}
		}
		out, err := formatValue(v, s.spec)
		if err != nil {
			return "", &CompositionError{Field: s.field, Reason: err.Error()}
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

type specError string

func (e specError) Error() string { return string(e) }

func formatValue(v lot.Value, sp spec) (string, error) {
	if sp.raw == "" || v.Null {
		return v.String(), nil
	}
	if !v.Numeric {
		return "", specError("format spec " + strconv.Quote(sp.raw) + " needs a numeric field")
	}

	digits := sp.precision
	if digits < 0 {
		digits = fractionDigits(v.Number)
	}
	if !sp.grouping {
		return strconv.FormatFloat(v.Number, 'f', digits, 64), nil
	}
	return printer.Sprint(number.Decimal(v.Number,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	)), nil
}

// fractionDigits returns how many decimals the shortest exact rendering
// of f needs.
func fractionDigits(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
