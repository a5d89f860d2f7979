package plasticity

import (
	"math"

	"github.com/voodooEntity/neurosplit/src/system/failure"
)

// WeightDependence is the weight half of an STDP rule. Its terms are
// written once per synapse type, scaled by that type's weight scale.
type WeightDependence interface {
	Rule() string
	ExecutableSuffix() string
	ParametersSizeInBytes(nSynapseTypes int, nWeightTerms int) int
	WriteParameters(w *Writer, weightScales []float64, nWeightTerms int) error
	WeightMaximum() float64
	IsSameAs(other WeightDependence) bool
}

func writeScaled(w *Writer, scale float64, values ...float64) {
	for _, v := range values {
		w.WriteInt32(int32(math.RoundToEven(v * scale)))
	}
}

// Multiplicative scales potentiation by the distance to WMax and depression
// by the distance to WMin.
type Multiplicative struct {
	WMin   float64
	WMax   float64
	APlus  float64
	AMinus float64
}

func NewMultiplicative() *Multiplicative {
	return &Multiplicative{WMin: 0, WMax: 1, APlus: 0.01, AMinus: 0.01}
}

func (m *Multiplicative) Rule() string             { return "MultiplicativeWeightDependence" }
func (m *Multiplicative) ExecutableSuffix() string { return "multiplicative" }
func (m *Multiplicative) WeightMaximum() float64   { return m.WMax }

func (m *Multiplicative) ParametersSizeInBytes(nSynapseTypes int, nWeightTerms int) int {
	return 4 * 4 * nSynapseTypes
}

func (m *Multiplicative) WriteParameters(w *Writer, weightScales []float64, nWeightTerms int) error {
	if 1 != nWeightTerms {
		return failure.Configuration(m.Rule(), "only supports a single weight term, got %d", nWeightTerms)
	}
	for _, scale := range weightScales {
		writeScaled(w, scale, m.WMin, m.WMax, m.APlus, m.AMinus)
	}
	return nil
}

func (m *Multiplicative) IsSameAs(other WeightDependence) bool {
	o, ok := other.(*Multiplicative)
	return ok && *m == *o
}

// Additive applies fixed potentiation and depression steps. The second term
// (A3Plus, A3Minus) is used by triplet timing rules.
type Additive struct {
	WMin    float64
	WMax    float64
	APlus   float64
	AMinus  float64
	A3Plus  float64
	A3Minus float64
}

func NewAdditive() *Additive {
	return &Additive{WMin: 0, WMax: 1, APlus: 0.01, AMinus: 0.01}
}

func (a *Additive) Rule() string             { return "AdditiveWeightDependence" }
func (a *Additive) ExecutableSuffix() string { return "additive" }
func (a *Additive) WeightMaximum() float64   { return a.WMax }

func (a *Additive) ParametersSizeInBytes(nSynapseTypes int, nWeightTerms int) int {
	return (2 + 2*nWeightTerms) * 4 * nSynapseTypes
}

func (a *Additive) WriteParameters(w *Writer, weightScales []float64, nWeightTerms int) error {
	if 1 != nWeightTerms && 2 != nWeightTerms {
		return failure.Configuration(a.Rule(), "supports one or two weight terms, got %d", nWeightTerms)
	}
	for _, scale := range weightScales {
		writeScaled(w, scale, a.WMin, a.WMax, a.APlus, a.AMinus)
		if 2 == nWeightTerms {
			writeScaled(w, scale, a.A3Plus, a.A3Minus)
		}
	}
	return nil
}

func (a *Additive) IsSameAs(other WeightDependence) bool {
	o, ok := other.(*Additive)
	return ok && *a == *o
}
