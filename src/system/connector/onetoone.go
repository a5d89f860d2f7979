package connector

import (
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

// OneToOne connects pre atom i to post atom i.
type OneToOne struct {
	Synapses
}

func NewOneToOne(synapses Synapses) *OneToOne {
	return &OneToOne{Synapses: synapses}
}

func (o *OneToOne) Name() string {
	return "OneToOneConnector"
}

func (o *OneToOne) Bind(projection Projection) Connector {
	bound := *o
	bound.Stream = uint64(projection.ID)
	return &bound
}

func (o *OneToOne) HasConnections(pre, post slicing.Slice) bool {
	_, ok := pre.Overlap(post)
	return ok
}

func (o *OneToOne) MaxConnectionsFromPre(pre, post slicing.Slice, delays *DelayRange) (int, error) {
	if err := delays.validate(o.Name(), o.MaxSupportedDelay); nil != err {
		return 0, err
	}
	shared, ok := pre.Overlap(post)
	if !ok {
		return 0, nil
	}
	return o.countInDelayRange(shared.NAtoms(), shared, delays), nil
}

func (o *OneToOne) MaxConnectionsToPost(pre, post slicing.Slice) int {
	if o.HasConnections(pre, post) {
		return 1
	}
	return 0
}

func (o *OneToOne) MaxWeight(pre, post slicing.Slice) float64 {
	shared, ok := pre.Overlap(post)
	if !ok {
		return 0
	}
	return o.maxWeight(shared)
}

func (o *OneToOne) MaxDelay(pre, post slicing.Slice) float64 {
	shared, ok := pre.Overlap(post)
	if !ok {
		return 0
	}
	return o.maxDelay(shared)
}

func (o *OneToOne) Generate(pre, post slicing.Slice, synapseType uint8) (Table, error) {
	shared, ok := pre.Overlap(post)
	if !ok {
		return Table{}, nil
	}
	table := make(Table, shared.NAtoms())
	indices := make([]int, len(table))
	for i := range table {
		atom := shared.LoAtom + i
		table[i].Source = uint32(atom)
		table[i].Target = uint32(atom)
		indices[i] = atom
	}
	if err := o.fill(o.Name(), table, indices, synapseType, o.rng(pre, post)); nil != err {
		return nil, err
	}
	return table, nil
}

func (o *OneToOne) ConnectorID() uint32 {
	return ONE_TO_ONE
}

func (o *OneToOne) ParamBlockSize() int {
	return 0
}

func (o *OneToOne) GeneratesOnMachine() bool {
	return o.onMachine()
}

func (o *OneToOne) ParamBlock(pre, post slicing.Slice) ([]uint32, error) {
	return []uint32{}, nil
}
