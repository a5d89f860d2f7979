// Package plasticity generates the fixed point parameter blocks of STDP
// rules: exponential decay lookup tables, derived constants and the weight
// dependence terms per synapse type.
package plasticity

import (
	"math"

	"github.com/voodooEntity/neurosplit/src/system/failure"
)

const (
	STDP_FIXED_POINT     = 11
	STDP_FIXED_POINT_ONE = 1 << STDP_FIXED_POINT
)

// FloatToFixed scales v by one and rounds half to even.
func FloatToFixed(v float64, one int) int64 {
	return int64(math.RoundToEven(v * float64(one)))
}

// LUT is an exponential decay table. Entry i holds exp(-t/tau) at
// t = (i << Shift) timesteps.
type LUT struct {
	Values []int16
	Shift  int
}

// LastEntry is the boundary value of the table. Anything above zero means
// the decay was cut off before it reached zero.
func (l LUT) LastEntry() int16 {
	if 0 == len(l.Values) {
		return 0
	}
	return l.Values[len(l.Values)-1]
}

func (l LUT) SizeInBytes() int {
	return 2 * len(l.Values)
}

func ExpLUT(tau float64, size int, shift int, timestepMS float64) (LUT, error) {
	if tau <= 0 || math.IsNaN(tau) {
		return LUT{}, failure.Configuration("exponential lookup table", "time constant must be positive, got %g", tau)
	}
	if size < 1 || shift < 0 {
		return LUT{}, failure.Configuration("exponential lookup table", "needs size >= 1 and shift >= 0, got %d and %d", size, shift)
	}
	if timestepMS <= 0 {
		return LUT{}, failure.Configuration("exponential lookup table", "timestep must be positive, got %g ms", timestepMS)
	}
	lut := LUT{Values: make([]int16, size), Shift: shift}
	for i := range lut.Values {
		t := float64(i<<shift) * timestepMS
		lut.Values[i] = int16(FloatToFixed(math.Exp(-t/tau), STDP_FIXED_POINT_ONE))
	}
	return lut, nil
}
