package connector

import (
	"math"
	"math/rand/v2"

	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

// ids of the parameter generators the on-machine expander knows
const (
	GENERATOR_CONSTANT       uint32 = 0
	GENERATOR_UNIFORM        uint32 = 1
	GENERATOR_NORMAL         uint32 = 2
	GENERATOR_NORMAL_CLIPPED uint32 = 3
)

// MAX_REDRAWS caps the redraws of a clipped distribution for one value.
const MAX_REDRAWS = 1024

// ValueRule produces the weight or delay of each connection. Connections are
// identified by their canonical index, which each connector defines.
type ValueRule interface {
	Generate(entity string, indices []int, rng *rand.Rand) ([]float64, error)
	// Bounds returns the smallest and largest value any connection with a
	// canonical index inside span can get.
	Bounds(span slicing.Slice) (float64, float64)
	IsRandom() bool
}

// MachineRule is a rule the on-machine expander can evaluate itself.
type MachineRule interface {
	OnMachine() bool
	GeneratorID() uint32
	ParamWords() ([]uint32, error)
}

// Constant is the scalar fast path.
type Constant float64

func (c Constant) Generate(_ string, indices []int, _ *rand.Rand) ([]float64, error) {
	values := make([]float64, len(indices))
	for i := range values {
		values[i] = float64(c)
	}
	return values, nil
}

func (c Constant) Bounds(slicing.Slice) (float64, float64) {
	return float64(c), float64(c)
}

func (c Constant) IsRandom() bool      { return false }
func (c Constant) OnMachine() bool     { return true }
func (c Constant) GeneratorID() uint32 { return GENERATOR_CONSTANT }

func (c Constant) ParamWords() ([]uint32, error) {
	return accumWords("constant", float64(c))
}

// Array holds one value per canonical connection index.
type Array []float64

func (a Array) Generate(entity string, indices []int, _ *rand.Rand) ([]float64, error) {
	values := make([]float64, len(indices))
	for i, index := range indices {
		if index < 0 || index >= len(a) {
			return nil, failure.Configuration(entity, "value array has %d entries, connection %d needs index %d", len(a), i, index)
		}
		values[i] = a[index]
	}
	return values, nil
}

// Bounds looks at the part of span the array covers, or at the whole array
// when span lies beyond it.
func (a Array) Bounds(span slicing.Slice) (float64, float64) {
	if 0 == len(a) {
		return 0, 0
	}
	part, ok := span.Overlap(slicing.New(0, len(a)-1))
	if !ok {
		part = slicing.New(0, len(a)-1)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range a[part.LoAtom : part.HiAtom+1] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func (a Array) IsRandom() bool { return false }

// Uniform draws from [Low, High).
type Uniform struct {
	Low  float64
	High float64
}

func (u Uniform) Generate(entity string, indices []int, rng *rand.Rand) ([]float64, error) {
	if u.Low > u.High {
		return nil, failure.Configuration(entity, "uniform low %g above high %g", u.Low, u.High)
	}
	values := make([]float64, len(indices))
	for i := range values {
		values[i] = u.Low + rng.Float64()*(u.High-u.Low)
	}
	return values, nil
}

func (u Uniform) Bounds(slicing.Slice) (float64, float64) {
	return u.Low, u.High
}

func (u Uniform) IsRandom() bool      { return true }
func (u Uniform) OnMachine() bool     { return true }
func (u Uniform) GeneratorID() uint32 { return GENERATOR_UNIFORM }

func (u Uniform) ParamWords() ([]uint32, error) {
	return accumWords("uniform", u.Low, u.High)
}

// NormalClipped draws from a normal distribution and redraws values outside
// [Low, High].
type NormalClipped struct {
	Mu    float64
	Sigma float64
	Low   float64
	High  float64
}

func (n NormalClipped) Generate(entity string, indices []int, rng *rand.Rand) ([]float64, error) {
	if n.Sigma < 0 || n.Low > n.High {
		return nil, failure.Configuration(entity, "normal clipped needs sigma >= 0 and low <= high, got sigma %g bounds [%g, %g]", n.Sigma, n.Low, n.High)
	}
	return redraw(entity, len(indices), n.Low, n.High, func() float64 {
		return n.Mu + rng.NormFloat64()*n.Sigma
	})
}

func (n NormalClipped) Bounds(slicing.Slice) (float64, float64) {
	return n.Low, n.High
}

func (n NormalClipped) IsRandom() bool      { return true }
func (n NormalClipped) OnMachine() bool     { return true }
func (n NormalClipped) GeneratorID() uint32 { return GENERATOR_NORMAL_CLIPPED }

func (n NormalClipped) ParamWords() ([]uint32, error) {
	return accumWords("normal clipped", n.Mu, n.Sigma, n.Low, n.High)
}

// ExponentialClipped draws Beta-scaled exponential values and redraws values
// outside [Low, High]. The on-machine generator does not clip, so tables
// using it are always shipped.
type ExponentialClipped struct {
	Beta float64
	Low  float64
	High float64
}

func (e ExponentialClipped) Generate(entity string, indices []int, rng *rand.Rand) ([]float64, error) {
	if e.Beta <= 0 || e.Low > e.High {
		return nil, failure.Configuration(entity, "exponential clipped needs beta > 0 and low <= high, got beta %g bounds [%g, %g]", e.Beta, e.Low, e.High)
	}
	return redraw(entity, len(indices), e.Low, e.High, func() float64 {
		return rng.ExpFloat64() * e.Beta
	})
}

func (e ExponentialClipped) Bounds(slicing.Slice) (float64, float64) {
	return e.Low, e.High
}

func (e ExponentialClipped) IsRandom() bool { return true }

func redraw(entity string, n int, low, high float64, draw func() float64) ([]float64, error) {
	values := make([]float64, n)
	for i := range values {
		attempts := 0
		value := draw()
		for value < low || value > high {
			attempts++
			if MAX_REDRAWS == attempts {
				return nil, failure.Configuration(entity, "no value inside [%g, %g] after %d draws", low, high, MAX_REDRAWS)
			}
			value = draw()
		}
		values[i] = value
	}
	return values, nil
}

// accumWords converts values to the s16.15 fixed point words the machine
// reads.
func accumWords(entity string, values ...float64) ([]uint32, error) {
	words := make([]uint32, len(values))
	for i, v := range values {
		scaled := math.Round(v * (1 << 15))
		if scaled > math.MaxInt32 || scaled < math.MinInt32 || math.IsNaN(scaled) {
			return nil, failure.Configuration(entity, "value %g does not fit s16.15", v)
		}
		words[i] = uint32(int32(scaled))
	}
	return words, nil
}
