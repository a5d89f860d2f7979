package plasticity

import (
	"github.com/voodooEntity/neurosplit/src/system/failure"
)

// STDP is one plasticity rule instance: a timing dependence and a weight
// dependence sharing one parameter block.
type STDP struct {
	Timing TimingDependence
	Weight WeightDependence
}

// Block is the generated parameter block of a rule instance.
type Block struct {
	Data        []byte
	LastEntries []LastEntry
}

func (s STDP) Name() string {
	return s.Timing.Rule() + "/" + s.Weight.Rule()
}

func (s STDP) ExecutableSuffix() string {
	return "stdp_" + s.Timing.ExecutableSuffix() + "_" + s.Weight.ExecutableSuffix()
}

// ParametersSizeInBytes is the size of the block Generate writes, known
// without generating anything.
func (s STDP) ParametersSizeInBytes(nSynapseTypes int) int {
	return s.Timing.ParametersSizeInBytes() + s.Weight.ParametersSizeInBytes(nSynapseTypes, s.Timing.NWeightTerms())
}

// Generate writes the timing block followed by one weight block per synapse
// type.
func (s STDP) Generate(timestepUS int, weightScales []float64) (Block, error) {
	if nil == s.Timing || nil == s.Weight {
		return Block{}, failure.Configuration("STDP", "needs both a timing and a weight dependence")
	}
	var w Writer
	entries, err := s.Timing.WriteParameters(&w, timestepUS)
	if nil != err {
		return Block{}, err
	}
	if err := s.Weight.WriteParameters(&w, weightScales, s.Timing.NWeightTerms()); nil != err {
		return Block{}, err
	}
	if expected := s.ParametersSizeInBytes(len(weightScales)); expected != w.Len() {
		return Block{}, failure.Configuration(s.Name(), "wrote %d bytes, declared %d", w.Len(), expected)
	}
	return Block{Data: w.Bytes(), LastEntries: entries}, nil
}

func (s STDP) IsSameAs(other STDP) bool {
	return s.Timing.IsSameAs(other.Timing) && s.Weight.IsSameAs(other.Weight)
}

func (s STDP) Provenance(pre, post string, block Block) []ProvenanceItem {
	return s.Timing.Provenance(pre, post, block.LastEntries)
}
