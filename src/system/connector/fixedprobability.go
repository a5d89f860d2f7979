package connector

import (
	"math"

	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

// FixedProbability connects every (pre, post) pair independently with
// probability P. The draws come from the slice pair's seeded stream so the
// same seed always yields the same table.
type FixedProbability struct {
	Synapses
	P                    float64
	AllowSelfConnections bool
	Projection           Projection
}

func NewFixedProbability(synapses Synapses, p float64, allowSelfConnections bool) *FixedProbability {
	return &FixedProbability{Synapses: synapses, P: p, AllowSelfConnections: allowSelfConnections}
}

func (f *FixedProbability) Name() string {
	return "FixedProbabilityConnector"
}

func (f *FixedProbability) Bind(projection Projection) Connector {
	bound := *f
	bound.Projection = projection
	bound.Stream = uint64(projection.ID)
	return &bound
}

func (f *FixedProbability) skipsSelf() bool {
	return f.Projection.Self && !f.AllowSelfConnections
}

func (f *FixedProbability) rowLength(post slicing.Slice) int {
	return max(f.Projection.NPost, post.HiAtom+1)
}

func (f *FixedProbability) validate() error {
	if f.P < 0 || f.P > 1 || math.IsNaN(f.P) {
		return failure.Configuration(f.Name(), "probability %g outside [0, 1]", f.P)
	}
	return nil
}

func (f *FixedProbability) HasConnections(pre, post slicing.Slice) bool {
	if 0 >= f.P {
		return false
	}
	if f.skipsSelf() && 1 == pre.NAtoms() && pre == post {
		return false
	}
	return true
}

// MaxConnectionsFromPre assumes every draw succeeds.
func (f *FixedProbability) MaxConnectionsFromPre(pre, post slicing.Slice, delays *DelayRange) (int, error) {
	if err := delays.validate(f.Name(), f.MaxSupportedDelay); nil != err {
		return 0, err
	}
	if !f.HasConnections(pre, post) {
		return 0, nil
	}
	n := pre.NAtoms() * post.NAtoms()
	return f.countInDelayRange(n, indexSpan(pre, post, f.rowLength(post)), delays), nil
}

func (f *FixedProbability) MaxConnectionsToPost(pre, post slicing.Slice) int {
	if !f.HasConnections(pre, post) {
		return 0
	}
	return pre.NAtoms()
}

func (f *FixedProbability) MaxWeight(pre, post slicing.Slice) float64 {
	return f.maxWeight(indexSpan(pre, post, f.rowLength(post)))
}

func (f *FixedProbability) MaxDelay(pre, post slicing.Slice) float64 {
	return f.maxDelay(indexSpan(pre, post, f.rowLength(post)))
}

func (f *FixedProbability) Generate(pre, post slicing.Slice, synapseType uint8) (Table, error) {
	if err := f.validate(); nil != err {
		return nil, err
	}
	rng := f.rng(pre, post)
	rowLength := f.rowLength(post)
	table := Table{}
	indices := []int{}
	for source := pre.LoAtom; source <= pre.HiAtom; source++ {
		for target := post.LoAtom; target <= post.HiAtom; target++ {
			// draw for every pair so skipped self pairs do not shift the stream
			hit := rng.Float64() < f.P
			if !hit || (source == target && f.skipsSelf()) {
				continue
			}
			table = append(table, Record{Source: uint32(source), Target: uint32(target)})
			indices = append(indices, source*rowLength+target)
		}
	}
	if err := f.fill(f.Name(), table, indices, synapseType, rng); nil != err {
		return nil, err
	}
	return table, nil
}

func (f *FixedProbability) ConnectorID() uint32 {
	return FIXED_PROBABILITY
}

func (f *FixedProbability) ParamBlockSize() int {
	return 8
}

func (f *FixedProbability) GeneratesOnMachine() bool {
	return f.onMachine()
}

// ParamBlock is the self connection flag followed by P as an unsigned 0.32
// fraction.
func (f *FixedProbability) ParamBlock(pre, post slicing.Slice) ([]uint32, error) {
	if err := f.validate(); nil != err {
		return nil, err
	}
	probability := uint32(min(math.Round(f.P*(1<<32)), math.MaxUint32))
	return []uint32{boolWord(!f.skipsSelf()), probability}, nil
}
