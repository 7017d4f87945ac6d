// Package address normalizes raw parcel mailing addresses for display.
package address

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var directions = map[string]string{
	"N": "North",
	"S": "South",
	"E": "East",
	"W": "West",
}

var streetTypes = map[string]string{
	"AVE":  "Avenue",
	"ST":   "Street",
	"BLVD": "Boulevard",
	"RD":   "Road",
	"DR":   "Drive",
	"CT":   "Court",
	"PL":   "Place",
	"TER":  "Terrace",
	"LN":   "Lane",
	"WAY":  "Way",
	"CIR":  "Circle",
	"PKY":  "Parkway",
	"SQ":   "Square",
}

// Sanitize converts an auditor-style address into readable text, e.g.
// "2023 N DAMEN AVE" becomes "2023 North Damen Avenue".
//
// Only the part before the first comma is used. The house number is kept
// as written, directions and the street type are expanded, and every other
// word is capitalized. Words after the street type (unit numbers and the
// like) are dropped.
//
// Sanitize is not idempotent: a second pass may change an already
// sanitized address, e.g. "St" is not recognized as a street type.
func Sanitize(addr string) string {
	head, _, _ := strings.Cut(addr, ",")
	parts := strings.Fields(head)
	if len(parts) == 0 {
		return addr
	}

	out := make([]string, 0, len(parts))
	out = append(out, parts[0])

	for _, part := range parts[1:] {
		if dir, ok := directions[part]; ok {
			out = append(out, dir)
			continue
		}
		if st, ok := streetTypes[part]; ok {
			out = append(out, st)
			break
		}
		out = append(out, capitalize(part))
	}

	return strings.Join(out, " ")
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
