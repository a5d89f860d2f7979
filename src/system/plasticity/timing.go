package plasticity

import (
	"github.com/voodooEntity/neurosplit/src/system/failure"
)

// LastEntry is the boundary value of one generated lookup table.
type LastEntry struct {
	Parameter string
	Value     int16
}

// TimingDependence is the spike timing half of an STDP rule.
type TimingDependence interface {
	// Rule names the rule in provenance, e.g. "SpikePairRule".
	Rule() string
	ExecutableSuffix() string
	PreTraceBytes() int
	NWeightTerms() int
	ParameterNames() []string
	ParametersSizeInBytes() int
	// WriteParameters appends the rule's block and returns the last entries
	// of the tables it generated, in parameter order.
	WriteParameters(w *Writer, timestepUS int) ([]LastEntry, error)
	IsSameAs(other TimingDependence) bool
	Provenance(pre, post string, entries []LastEntry) []ProvenanceItem
}

func timestepMS(timestepUS int) float64 {
	return float64(timestepUS) / 1000
}

func checkTimestep(rule string, timestepUS int) error {
	if timestepUS <= 0 {
		return failure.Configuration(rule, "timestep must be positive, got %d us", timestepUS)
	}
	return nil
}

// writeLUTs generates every (parameter, tau, size, shift) table in order.
// Nothing is written unless all of them could be generated.
func writeLUTs(w *Writer, rule string, timestepUS int, specs []lutSpec) ([]LastEntry, error) {
	luts := make([]LUT, len(specs))
	for i, s := range specs {
		lut, err := ExpLUT(s.tau, s.size, s.shift, timestepMS(timestepUS))
		if nil != err {
			return nil, failure.Configuration(rule, "%s: %s", s.parameter, err.Error())
		}
		luts[i] = lut
	}
	entries := make([]LastEntry, len(specs))
	for i, lut := range luts {
		w.WriteLUT(lut)
		entries[i] = LastEntry{Parameter: specs[i].parameter, Value: lut.LastEntry()}
	}
	return entries, nil
}

type lutSpec struct {
	parameter string
	tau       float64
	size      int
	shift     int
}

const (
	PAIR_TAU_PLUS_SIZE   = 256
	PAIR_TAU_PLUS_SHIFT  = 0
	PAIR_TAU_MINUS_SIZE  = 256
	PAIR_TAU_MINUS_SHIFT = 0
)

// SpikePair is nearest pair STDP with one exponential trace per side.
type SpikePair struct {
	TauPlus  float64
	TauMinus float64
}

func NewSpikePair() *SpikePair {
	return &SpikePair{TauPlus: 20, TauMinus: 20}
}

func (s *SpikePair) Rule() string             { return "SpikePairRule" }
func (s *SpikePair) ExecutableSuffix() string { return "pair" }
func (s *SpikePair) PreTraceBytes() int       { return 2 }
func (s *SpikePair) NWeightTerms() int        { return 1 }

func (s *SpikePair) ParameterNames() []string {
	return []string{"tau_plus", "tau_minus"}
}

func (s *SpikePair) ParametersSizeInBytes() int {
	return 2 * (PAIR_TAU_PLUS_SIZE + PAIR_TAU_MINUS_SIZE)
}

func (s *SpikePair) WriteParameters(w *Writer, timestepUS int) ([]LastEntry, error) {
	if err := checkTimestep(s.Rule(), timestepUS); nil != err {
		return nil, err
	}
	return writeLUTs(w, s.Rule(), timestepUS, []lutSpec{
		{"tau_plus", s.TauPlus, PAIR_TAU_PLUS_SIZE, PAIR_TAU_PLUS_SHIFT},
		{"tau_minus", s.TauMinus, PAIR_TAU_MINUS_SIZE, PAIR_TAU_MINUS_SHIFT},
	})
}

func (s *SpikePair) IsSameAs(other TimingDependence) bool {
	o, ok := other.(*SpikePair)
	return ok && *s == *o
}

func (s *SpikePair) Provenance(pre, post string, entries []LastEntry) []ProvenanceItem {
	return lutProvenance(pre, post, s.Rule(), entries)
}
