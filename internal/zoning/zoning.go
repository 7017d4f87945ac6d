// Package zoning decodes Cincinnati zoning codes into readable descriptions.
package zoning

import (
	"fmt"
	"strings"
)

// baseCodes maps every base district, including the hyphenated riverfront
// districts and the form-based transect zones, to its description.
var baseCodes = map[string]string{
	// Single-family
	"SF-20": "Single-family (20,000 sq ft min lot)",
	"SF-10": "Single-family (10,000 sq ft min lot)",
	"SF-6":  "Single-family (6,000 sq ft min lot)",
	"SF-4":  "Single-family (4,000 sq ft min lot)",
	"SF-2":  "Single-family (2,000 sq ft min lot)",

	// Multi-family
	"RMX":    "Residential Mixed",
	"RM-2.0": "Residential Multi-family (2,000 sq ft land/unit)",
	"RM-1.2": "Residential Multi-family (1,200 sq ft land/unit)",
	"RM-0.7": "Residential Multi-family (700 sq ft land/unit)",

	// Office
	"OL": "Office Limited",
	"OG": "Office General",

	// Commercial
	"CN": "Commercial Neighborhood",
	"CC": "Commercial Community",
	"CG": "Commercial General",

	// Urban mix and downtown
	"UM": "Urban Mix",
	"DD": "Downtown Development",

	// Manufacturing
	"MA": "Manufacturing Agricultural",
	"ML": "Manufacturing Limited",
	"MG": "Manufacturing General",
	"ME": "Manufacturing Exclusive",

	// Riverfront
	"RF-R": "Riverfront Residential/Recreational",
	"RF-C": "Riverfront Commercial",
	"RF-M": "Riverfront Manufacturing",

	// Other
	"PR": "Parks and Recreation",
	"IR": "Institutional-Residential",
	"PD": "Planned Development",

	// Form-based transect zones
	"T3E":    "T3 Estate (Sub-Urban)",
	"T3N":    "T3 Neighborhood (Sub-Urban)",
	"T4N.MF": "T4 Neighborhood Medium Footprint (General Urban)",
	"T4N.SF": "T4 Neighborhood Small Footprint (General Urban)",
	"T5MS":   "T5 Main Street (Urban Center)",
	"T5N.LS": "T5 Neighborhood Large Setback (Urban Center)",
	"T5N.SS": "T5 Neighborhood Small Setback (Urban Center)",
	"T5F":    "T5 Flex (Urban Center)",
}

// suffixes maps overlay and orientation modifiers. "M" here is the
// commercial mixed-use suffix; RF-M is matched as a base code first.
var suffixes = map[string]string{
	"T":  "Transportation Corridor Overlay",
	"MH": "Middle Housing Overlay",
	"B":  "Neighborhood Business District",
	"P":  "Pedestrian-Oriented",
	"A":  "Auto-Oriented",
	"M":  "Mixed-Use",
	"O":  "Open Sub-Zone",
}

// unknownPrefix starts the description of a code with no matching base district.
const unknownPrefix = "Unknown Zoning Code: "

// Describe returns the human-readable description of a zoning code such as
// "SF-4-T" or "CC-A-MH". It never fails: unrecognized suffixes are kept as
// written and codes with no known base district are reported as unknown.
//
// The longest hyphen-joined prefix that is a base code wins, so "RF-M" is
// Riverfront Manufacturing rather than "RF" plus the mixed-use suffix.
func Describe(code string) string {
	desc, ok := lookup(code)
	if !ok {
		return unknownPrefix + code
	}
	return desc
}

// Format returns the description followed by the original code in
// parentheses, the form used in post text.
func Format(code string) string {
	return fmt.Sprintf("%s (%s)", Describe(code), code)
}

// Known reports whether code resolves to a base district.
func Known(code string) bool {
	_, ok := lookup(code)
	return ok
}

func lookup(code string) (string, bool) {
	if desc, ok := baseCodes[code]; ok {
		return desc, true
	}

	parts := strings.Split(code, "-")
	for k := len(parts); k > 0; k-- {
		desc, ok := baseCodes[strings.Join(parts[:k], "-")]
		if !ok {
			continue
		}

		rest := parts[k:]
		if len(rest) == 0 {
			return desc, true
		}

		named := make([]string, 0, len(rest))
		for _, s := range rest {
			if name, ok := suffixes[s]; ok {
				named = append(named, name)
			} else {
				named = append(named, s)
			}
		}
		return desc + " - " + strings.Join(named, ", "), true
	}

	return "", false
}
