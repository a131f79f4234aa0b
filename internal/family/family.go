package family

import (
	"regexp"
	"strings"
)

// rule is one entry of the variant-parameter table. Label selects the
// formatter; an empty label strips the token without recording a variant.
// The underscore-prefixed form of each code precedes the bare form so the
// bare pattern never claims half of a prefixed token.
type rule struct {
	pattern *regexp.Regexp
	label   string
}

var rules = []rule{
	{regexp.MustCompile(`_SG[\d.]+`), "Sensitivity"},
	{regexp.MustCompile(`SG[\d.]+`), "Sensitivity"},
	{regexp.MustCompile(`_PG\d+`), "Preamp Gain"},
	{regexp.MustCompile(`PG\d+`), "Preamp Gain"},
	{regexp.MustCompile(`_LP[\d.]+`), "LP Corner"},
	{regexp.MustCompile(`LP[\d.]+`), "LP Corner"},
	{regexp.MustCompile(`_FV[\d.]+Vpp`), "Full-scale"},
	{regexp.MustCompile(`FV[\d.]+Vpp`), "Full-scale"},
	{regexp.MustCompile(`_FR\d+`), "Sample Rate"},
	{regexp.MustCompile(`FR\d+`), "Sample Rate"},
	{regexp.MustCompile(`_DF[\d.]+`), "DC Filter"},
	{regexp.MustCompile(`DF[\d.]+`), "DC Filter"},
	{regexp.MustCompile(`_FP\w+`), "Phase"},
	{regexp.MustCompile(`FP\w+`), "Phase"},
	{regexp.MustCompile(`_EG\d+`), "Gen"},
	{regexp.MustCompile(`EG\d+`), "Gen"},
	{regexp.MustCompile(`_STground\w+`), ""},
	{regexp.MustCompile(`STground\w+`), ""},
	{regexp.MustCompile(`_RC\d+`), "Coil R"},
	{regexp.MustCompile(`RC\d+`), "Coil R"},
	{regexp.MustCompile(`_RS\w+`), "Shunt R"},
	{regexp.MustCompile(`RS\w+`), "Shunt R"},
	{regexp.MustCompile(`_LF[\d.]+`), "LF Corner"},
	{regexp.MustCompile(`LF[\d.]+`), "LF Corner"},
}

var valuePattern = regexp.MustCompile(`[\d.]+(?:Vpp)?\w*$`)
var underscoreRuns = regexp.MustCompile(`_+`)

// Extract parses an instrument model string into a canonical family name and
// a comma-joined variant-parameter string. Variant tokens (preamp gain,
// corner frequencies, sample rate, and so on) are stripped from the model;
// the residue becomes the base model. When fewer than three characters
// remain, the second semicolon-delimited segment of the description supplies
// the base model instead.
func Extract(manufacturer, model, description string) (familyName, variantParams string) {
	baseModel := model
	var variants []string

	for _, r := range rules {
		for _, match := range r.pattern.FindAllString(baseModel, -1) {
			if r.label != "" {
				if value := valuePattern.FindString(match); value != "" {
					variants = append(variants, formatVariant(r.label, match, value))
				}
			}
			baseModel = strings.Replace(baseModel, match, "", 1)
		}
	}

	baseModel = strings.Trim(underscoreRuns.ReplaceAllString(baseModel, "_"), "_")

	if len(baseModel) < 3 {
		if parts := strings.Split(description, ";"); len(parts) >= 2 {
			baseModel = strings.TrimSpace(parts[1])
		}
	}

	if baseModel != "" {
		familyName = manufacturer + " " + baseModel
	} else {
		familyName = manufacturer
	}

	return familyName, strings.Join(variants, ", ")
}

func formatVariant(label, match, value string) string {
	switch label {
	case "Sensitivity":
		return value + " V/m/s"
	case "Sample Rate":
		return value + " Hz"
	case "LP Corner":
		return "LP " + value + "s"
	case "Full-scale":
		return value
	case "Preamp Gain":
		return "Gain " + value + "x"
	case "Gen", "Phase":
		return strings.TrimLeft(match, "_")
	default:
		return label + ": " + value
	}
}
