package plasticity

import (
	"math"

	"github.com/voodooEntity/neurosplit/src/system/failure"
)

const (
	IZHIKEVICH_TAU_PLUS_SIZE   = 256
	IZHIKEVICH_TAU_PLUS_SHIFT  = 0
	IZHIKEVICH_TAU_MINUS_SIZE  = 256
	IZHIKEVICH_TAU_MINUS_SHIFT = 0
	IZHIKEVICH_TAU_C_SIZE      = 520
	IZHIKEVICH_TAU_C_SHIFT     = 4
	IZHIKEVICH_TAU_D_SIZE      = 370
	IZHIKEVICH_TAU_D_SHIFT     = 2

	// the weight update constant derived from tau_c and tau_d is only valid
	// at this timestep
	IZHIKEVICH_TIMESTEP_US = 1000
)

// IzhikevichNeuromodulation is dopamine modulated STDP with an eligibility
// trace (tau_c) and a dopamine trace (tau_d).
type IzhikevichNeuromodulation struct {
	TauPlus  float64
	TauMinus float64
	TauC     float64
	TauD     float64
}

func NewIzhikevichNeuromodulation() *IzhikevichNeuromodulation {
	return &IzhikevichNeuromodulation{TauPlus: 20, TauMinus: 20, TauC: 1000, TauD: 200}
}

func (i *IzhikevichNeuromodulation) Rule() string             { return "IzhikevichRule" }
func (i *IzhikevichNeuromodulation) ExecutableSuffix() string { return "izhikevich_neuromodulation" }
func (i *IzhikevichNeuromodulation) PreTraceBytes() int       { return 2 }
func (i *IzhikevichNeuromodulation) NWeightTerms() int        { return 1 }

func (i *IzhikevichNeuromodulation) ParameterNames() []string {
	return []string{"tau_plus", "tau_minus", "tau_c", "tau_d"}
}

func (i *IzhikevichNeuromodulation) ParametersSizeInBytes() int {
	return 2*(IZHIKEVICH_TAU_PLUS_SIZE+IZHIKEVICH_TAU_MINUS_SIZE+IZHIKEVICH_TAU_C_SIZE+IZHIKEVICH_TAU_D_SIZE) + 4
}

// WeightUpdateConstant is 1 / -(1/tau_c + 1/tau_d) in STDP fixed point.
func (i *IzhikevichNeuromodulation) WeightUpdateConstant() int32 {
	return int32(FloatToFixed(1/(-(1/i.TauC + 1/i.TauD)), STDP_FIXED_POINT_ONE))
}

func (i *IzhikevichNeuromodulation) WriteParameters(w *Writer, timestepUS int) ([]LastEntry, error) {
	if IZHIKEVICH_TIMESTEP_US != timestepUS {
		return nil, failure.Configuration(i.Rule(), "lookup tables only support a %d us timestep, got %d us", IZHIKEVICH_TIMESTEP_US, timestepUS)
	}
	if 0 >= i.TauC || 0 >= i.TauD || math.IsNaN(i.TauC+i.TauD) {
		return nil, failure.Configuration(i.Rule(), "tau_c and tau_d must be positive, got %g and %g", i.TauC, i.TauD)
	}
	entries, err := writeLUTs(w, i.Rule(), timestepUS, []lutSpec{
		{"tau_plus", i.TauPlus, IZHIKEVICH_TAU_PLUS_SIZE, IZHIKEVICH_TAU_PLUS_SHIFT},
		{"tau_minus", i.TauMinus, IZHIKEVICH_TAU_MINUS_SIZE, IZHIKEVICH_TAU_MINUS_SHIFT},
		{"tau_c", i.TauC, IZHIKEVICH_TAU_C_SIZE, IZHIKEVICH_TAU_C_SHIFT},
		{"tau_d", i.TauD, IZHIKEVICH_TAU_D_SIZE, IZHIKEVICH_TAU_D_SHIFT},
	})
	if nil != err {
		return nil, err
	}
	w.WriteInt32(i.WeightUpdateConstant())
	return entries, nil
}

func (i *IzhikevichNeuromodulation) IsSameAs(other TimingDependence) bool {
	o, ok := other.(*IzhikevichNeuromodulation)
	return ok && *i == *o
}

func (i *IzhikevichNeuromodulation) Provenance(pre, post string, entries []LastEntry) []ProvenanceItem {
	return lutProvenance(pre, post, i.Rule(), entries)
}
