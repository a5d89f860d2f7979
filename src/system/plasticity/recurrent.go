package plasticity

import (
	"math"
)

// RecurrentFixed accumulates pre and post events inside fixed windows and
// changes the weight once an accumulator hits its threshold. It has no
// lookup tables.
type RecurrentFixed struct {
	AccumulatorDepression   int32
	AccumulatorPotentiation int32
	// window lengths in ms
	MeanPreWindow  float64
	MeanPostWindow float64
}

func NewRecurrentFixed() *RecurrentFixed {
	return &RecurrentFixed{AccumulatorDepression: -6, AccumulatorPotentiation: 6, MeanPreWindow: 35, MeanPostWindow: 35}
}

func (r *RecurrentFixed) Rule() string             { return "RecurrentRule" }
func (r *RecurrentFixed) ExecutableSuffix() string { return "recurrent_fixed" }
func (r *RecurrentFixed) PreTraceBytes() int       { return 0 }
func (r *RecurrentFixed) NWeightTerms() int        { return 1 }

func (r *RecurrentFixed) ParameterNames() []string {
	return []string{"accumulator_depression", "accumulator_potentiation", "mean_pre_window", "mean_post_window"}
}

func (r *RecurrentFixed) ParametersSizeInBytes() int {
	return 4 * 4
}

// WriteParameters writes the accumulator thresholds shifted towards zero by
// one, which is what the update loop compares against, then both windows
// in timesteps.
func (r *RecurrentFixed) WriteParameters(w *Writer, timestepUS int) ([]LastEntry, error) {
	if err := checkTimestep(r.Rule(), timestepUS); nil != err {
		return nil, err
	}
	w.WriteInt32(r.AccumulatorDepression + 1)
	w.WriteInt32(r.AccumulatorPotentiation - 1)
	w.WriteInt32(int32(math.RoundToEven(r.MeanPreWindow / timestepMS(timestepUS))))
	w.WriteInt32(int32(math.RoundToEven(r.MeanPostWindow / timestepMS(timestepUS))))
	return nil, nil
}

func (r *RecurrentFixed) IsSameAs(other TimingDependence) bool {
	o, ok := other.(*RecurrentFixed)
	return ok && *r == *o
}

func (r *RecurrentFixed) Provenance(pre, post string, entries []LastEntry) []ProvenanceItem {
	return nil
}
