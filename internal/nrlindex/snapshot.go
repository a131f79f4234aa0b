package nrlindex

// Descriptor identifies one reference instrument. Instances are created
// during a build or load and never modified afterwards.
type Descriptor struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Description  string `json:"description"`
	// Path is the response file location relative to the library root.
	Path string `json:"nrl_path"`
	// Stage0Gain is the gain of the reference response's first stage,
	// normally the datalogger preamp.
	Stage0Gain *float64 `json:"stage0_gain,omitempty"`
	// ADCGain is the total digital gain from the ADC stage onward.
	ADCGain       *float64 `json:"adc_gain,omitempty"`
	FamilyName    string   `json:"family_name,omitempty"`
	VariantParams string   `json:"variant_params,omitempty"`
}

// Snapshot is one immutable generation of the index. A rebuild produces a
// wholly new Snapshot; nothing patches an existing one in place.
type Snapshot struct {
	Version     string                  `json:"version"`
	ContentHash string                  `json:"nrl_hash"`
	Sensors     map[string][]Descriptor `json:"sensors"`
	Dataloggers map[string][]Descriptor `json:"dataloggers"`
	// DataloggerFamilies keys gain-independent signatures; instruments
	// differing only in gain staging share an entry here.
	DataloggerFamilies map[string][]Descriptor `json:"dataloggers_family"`
}

func newSnapshot(version, contentHash string) *Snapshot {
	return &Snapshot{
		Version:            version,
		ContentHash:        contentHash,
		Sensors:            make(map[string][]Descriptor),
		Dataloggers:        make(map[string][]Descriptor),
		DataloggerFamilies: make(map[string][]Descriptor),
	}
}

// SensorCandidates returns the descriptors colliding on a sensor signature.
// List order is build order, which is lexicographic scan order; the first
// element is the deterministic default under ambiguity.
func (s *Snapshot) SensorCandidates(sig string) []Descriptor {
	return s.Sensors[sig]
}

// DataloggerCandidates returns the descriptors for an exact signature.
func (s *Snapshot) DataloggerCandidates(sig string) []Descriptor {
	return s.Dataloggers[sig]
}

// FamilyCandidates returns the descriptors for a family signature.
func (s *Snapshot) FamilyCandidates(sig string) []Descriptor {
	return s.DataloggerFamilies[sig]
}

// Stats returns the number of distinct sensor and datalogger signatures.
func (s *Snapshot) Stats() (sensors, dataloggers int) {
	return len(s.Sensors), len(s.Dataloggers)
}
