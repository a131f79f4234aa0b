package detect

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"resprint/internal/nrlindex"
)

var titleCaser = cases.Title(language.English)

// FormatResult renders a result as a human summary, one part per resolved
// instrument half. When showFamily is set, ambiguous halves collapse to
// the family name with a "+N similar" count instead of naming an arbitrary
// candidate. Parts join with " | ", or newlines when multiline is set. An
// empty result formats as the empty string.
func FormatResult(r Result, multiline, showFamily bool) string {
	var parts []string
	if r.Sensor != nil {
		parts = append(parts, formatHalf("Sensor", r.Sensor, r.SensorCandidates, showFamily && r.SensorAmbiguous()))
	}
	if r.Datalogger != nil {
		parts = append(parts, formatHalf("Datalogger", r.Datalogger, r.DataloggerCandidates, showFamily && r.DataloggerAmbiguous()))
	}
	separator := " | "
	if multiline {
		separator = "\n"
	}
	return strings.Join(parts, separator)
}

func formatHalf(label string, d *nrlindex.Descriptor, candidates []nrlindex.Descriptor, collapse bool) string {
	if collapse {
		family := d.FamilyName
		if family == "" {
			family = d.Model
		}
		return fmt.Sprintf("%s: %s (+%d similar)", label, family, len(candidates)-1)
	}
	return fmt.Sprintf("%s: %s %s", label, DisplayManufacturer(d.Manufacturer), d.Model)
}

// DisplayManufacturer title-cases manufacturer names that are stored all
// lower case, as library directory names usually are. Mixed-case names
// pass through untouched.
func DisplayManufacturer(manufacturer string) string {
	if manufacturer != strings.ToLower(manufacturer) {
		return manufacturer
	}
	return titleCaser.String(manufacturer)
}
