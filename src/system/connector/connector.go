// Package connector holds the connectivity rules between two populations.
// Every rule answers the same questions for a (pre slice, post slice) pair:
// cheap upper bounds used to size memory before anything exists, an O(1)
// emptiness test used by the edge filter and the exact, order stable table of
// connections.
package connector

import (
	"math"
	"math/rand/v2"

	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

// ids of the connectors the on-machine expander knows
const (
	ONE_TO_ONE         uint32 = 0
	ALL_TO_ALL         uint32 = 1
	FIXED_PROBABILITY  uint32 = 2
	FIXED_TOTAL_NUMBER uint32 = 3
	FIXED_NUMBER_PRE   uint32 = 4
	FIXED_NUMBER_POST  uint32 = 5
	KERNEL             uint32 = 6
	MAPPING            uint32 = 7
)

type Connector interface {
	Name() string
	// MaxConnectionsFromPre bounds the number of records Generate can return
	// for the pair. With a delay range only connections whose delay can fall
	// into it are counted.
	MaxConnectionsFromPre(pre, post slicing.Slice, delays *DelayRange) (int, error)
	// MaxConnectionsToPost bounds the fan-in of a single post atom.
	MaxConnectionsToPost(pre, post slicing.Slice) int
	MaxWeight(pre, post slicing.Slice) float64
	MaxDelay(pre, post slicing.Slice) float64
	HasConnections(pre, post slicing.Slice) bool
	Generate(pre, post slicing.Slice, synapseType uint8) (Table, error)
}

// OnMachine is implemented by connectors whose tables can be re-derived by
// the on-machine expander from a packed parameter block.
type OnMachine interface {
	ConnectorID() uint32
	ParamBlockSize() int
	ParamBlock(pre, post slicing.Slice) ([]uint32, error)
	// GeneratesOnMachine is false when the weight or delay rules need the
	// table to be shipped explicitly.
	GeneratesOnMachine() bool
}

// Projection is what a connector knows about the two populations it joins.
type Projection struct {
	// ID identifies the projection the connector is bound to.
	ID    int
	NPre  int
	NPost int
	// Self is set when pre and post are the same population.
	Self bool
}

// Bindable connectors return a copy of themselves bound to the projection
// they are used on.
type Bindable interface {
	Bind(projection Projection) Connector
}

// DelayRange is an inclusive delay window in milliseconds.
type DelayRange struct {
	Min float64
	Max float64
}

func (d *DelayRange) validate(entity string, limit float64) error {
	if nil == d {
		return nil
	}
	if d.Min < 0 || d.Min > d.Max || math.IsNaN(d.Min) || math.IsNaN(d.Max) {
		return &failure.BoundsError{Entity: entity, Min: d.Min, Max: d.Max, Limit: limit}
	}
	if 0 < limit && d.Max > limit {
		return &failure.BoundsError{Entity: entity, Min: d.Min, Max: d.Max, Limit: limit}
	}
	return nil
}

// Synapses is the weight and delay configuration shared by every connector.
type Synapses struct {
	Weights ValueRule
	Delays  ValueRule
	// Seed makes random rules reproducible; every slice pair derives its own
	// stream from it.
	Seed uint64
	// Stream separates projections that share a seed. Bind sets it to the
	// projection id.
	Stream uint64
	// MaxSupportedDelay in ms, 0 means unlimited.
	MaxSupportedDelay float64
}

// rng returns the random stream of one slice pair. It only depends on the
// seed, the stream and the slice bounds so tables do not depend on
// generation order.
func (s Synapses) rng(pre, post slicing.Slice) *rand.Rand {
	return rand.New(rand.NewPCG(s.Seed^s.Stream*0x9E3779B97F4A7C15, uint64(uint32(pre.LoAtom))<<32|uint64(uint32(post.LoAtom))))
}

func (s Synapses) weights() ValueRule {
	if nil == s.Weights {
		return Constant(0)
	}
	return s.Weights
}

func (s Synapses) delays() ValueRule {
	if nil == s.Delays {
		return Constant(1)
	}
	return s.Delays
}

func (s Synapses) maxWeight(span slicing.Slice) float64 {
	lo, hi := s.weights().Bounds(span)
	return math.Max(math.Abs(lo), math.Abs(hi))
}

func (s Synapses) maxDelay(span slicing.Slice) float64 {
	_, hi := s.delays().Bounds(span)
	return hi
}

// countInDelayRange returns n unless no delay of the span can fall into the
// range. A partial overlap still counts all n.
func (s Synapses) countInDelayRange(n int, span slicing.Slice, delays *DelayRange) int {
	if nil == delays || 0 == n {
		return n
	}
	lo, hi := s.delays().Bounds(span)
	if hi < delays.Min || lo > delays.Max {
		return 0
	}
	return n
}

func (s Synapses) onMachine() bool {
	w, wok := s.weights().(MachineRule)
	d, dok := s.delays().(MachineRule)
	return wok && dok && w.OnMachine() && d.OnMachine()
}

// fill draws weights and delays for the given canonical connection indices
// and writes the records.
func (s Synapses) fill(entity string, table Table, indices []int, synapseType uint8, rng *rand.Rand) error {
	weights, err := s.weights().Generate(entity+" weights", indices, rng)
	if nil != err {
		return err
	}
	delays, err := s.delays().Generate(entity+" delays", indices, rng)
	if nil != err {
		return err
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range table {
		table[i].Weight = weights[i]
		table[i].Delay = delays[i]
		table[i].SynapseType = synapseType
		lo = math.Min(lo, delays[i])
		hi = math.Max(hi, delays[i])
	}
	if 0 < len(table) && (lo < 0 || (0 < s.MaxSupportedDelay && hi > s.MaxSupportedDelay)) {
		return &failure.BoundsError{Entity: entity + " delays", Min: lo, Max: hi, Limit: s.MaxSupportedDelay}
	}
	return nil
}
