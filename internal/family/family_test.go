package family

import "testing"

func TestExtractVariants(t *testing.T) {
	cases := []struct {
		name         string
		manufacturer string
		model        string
		description  string
		wantFamily   string
		wantVariants string
	}{
		{
			name:         "preamp gain and sample rate",
			manufacturer: "REF TEK",
			model:        "RT130_PG4_FR100",
			wantFamily:   "REF TEK RT130",
			wantVariants: "Gain 4x, 100 Hz",
		},
		{
			name:         "sensitivity",
			manufacturer: "Geospace",
			model:        "GS11D_SG1500",
			wantFamily:   "Geospace GS11D",
			wantVariants: "1500 V/m/s",
		},
		{
			name:         "low pass corner",
			manufacturer: "Nanometrics",
			model:        "TrilliumCompact_LP1.0",
			wantFamily:   "Nanometrics TrilliumCompact",
			wantVariants: "LP 1.0s",
		},
		{
			name:         "full scale voltage",
			manufacturer: "Kinemetrics",
			model:        "Q330_FV40Vpp",
			wantFamily:   "Kinemetrics Q330",
			wantVariants: "40Vpp",
		},
		{
			name:         "generation marker kept verbatim",
			manufacturer: "Guralp",
			model:        "CMG40T_EG2",
			wantFamily:   "Guralp CMG40T",
			wantVariants: "EG2",
		},
		{
			name:         "coil and shunt resistance",
			manufacturer: "Sercel",
			model:        "L22_RC5470_RS330",
			wantFamily:   "Sercel L22",
			wantVariants: "Coil R: 5470, Shunt R: 330",
		},
		{
			name:         "ground configuration stripped without variant",
			manufacturer: "Sercel",
			model:        "L4C_STgroundVel",
			wantFamily:   "Sercel L4C",
			wantVariants: "",
		},
		{
			name:         "plain model untouched",
			manufacturer: "Streckeisen",
			model:        "STS-2",
			wantFamily:   "Streckeisen STS-2",
			wantVariants: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotFamily, gotVariants := Extract(tc.manufacturer, tc.model, tc.description)
			if gotFamily != tc.wantFamily {
				t.Errorf("family: got %q, want %q", gotFamily, tc.wantFamily)
			}
			if gotVariants != tc.wantVariants {
				t.Errorf("variants: got %q, want %q", gotVariants, tc.wantVariants)
			}
		})
	}
}

func TestExtractFallsBackToDescription(t *testing.T) {
	familyName, variants := Extract("Guralp", "PG4_FR40", "CMG-3T; Broadband seismometer; 120s")
	if familyName != "Guralp Broadband seismometer" {
		t.Errorf("family: got %q", familyName)
	}
	if variants != "Gain 4x, 40 Hz" {
		t.Errorf("variants: got %q", variants)
	}
}

func TestExtractEmptyBaseUsesManufacturerAlone(t *testing.T) {
	familyName, _ := Extract("Guralp", "PG2", "")
	if familyName != "Guralp" {
		t.Errorf("family: got %q, want manufacturer alone", familyName)
	}
}

func TestExtractPrefixedFormBeforeBareForm(t *testing.T) {
	// A single _PG4 token must be consumed whole by the prefixed rule; the
	// bare rule must not leave a dangling underscore in the base model.
	familyName, variants := Extract("Acme", "Model_PG4", "")
	if familyName != "Acme Model" {
		t.Errorf("family: got %q", familyName)
	}
	if variants != "Gain 4x" {
		t.Errorf("variants: got %q", variants)
	}
}
