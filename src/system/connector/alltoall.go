package connector

import (
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

// AllToAll connects every pre atom to every post atom. On a projection from
// a population onto itself atom i only reaches atom i when
// AllowSelfConnections is set.
type AllToAll struct {
	Synapses
	AllowSelfConnections bool
	Projection           Projection
}

func NewAllToAll(synapses Synapses, allowSelfConnections bool) *AllToAll {
	return &AllToAll{Synapses: synapses, AllowSelfConnections: allowSelfConnections}
}

func (a *AllToAll) Name() string {
	return "AllToAllConnector"
}

func (a *AllToAll) Bind(projection Projection) Connector {
	bound := *a
	bound.Projection = projection
	bound.Stream = uint64(projection.ID)
	return &bound
}

func (a *AllToAll) skipsSelf() bool {
	return a.Projection.Self && !a.AllowSelfConnections
}

// rowLength is the stride of the canonical index pre * rowLength + post.
func (a *AllToAll) rowLength(post slicing.Slice) int {
	return max(a.Projection.NPost, post.HiAtom+1)
}

// indexSpan covers the canonical indices of every pair of the two slices.
func indexSpan(pre, post slicing.Slice, rowLength int) slicing.Slice {
	return slicing.New(pre.LoAtom*rowLength+post.LoAtom, pre.HiAtom*rowLength+post.HiAtom)
}

func (a *AllToAll) HasConnections(pre, post slicing.Slice) bool {
	if a.skipsSelf() && 1 == pre.NAtoms() && pre == post {
		return false
	}
	return true
}

func (a *AllToAll) MaxConnectionsFromPre(pre, post slicing.Slice, delays *DelayRange) (int, error) {
	if err := delays.validate(a.Name(), a.MaxSupportedDelay); nil != err {
		return 0, err
	}
	if !a.HasConnections(pre, post) {
		return 0, nil
	}
	n := pre.NAtoms() * post.NAtoms()
	return a.countInDelayRange(n, indexSpan(pre, post, a.rowLength(post)), delays), nil
}

func (a *AllToAll) MaxConnectionsToPost(pre, post slicing.Slice) int {
	if !a.HasConnections(pre, post) {
		return 0
	}
	return pre.NAtoms()
}

func (a *AllToAll) MaxWeight(pre, post slicing.Slice) float64 {
	return a.maxWeight(indexSpan(pre, post, a.rowLength(post)))
}

func (a *AllToAll) MaxDelay(pre, post slicing.Slice) float64 {
	return a.maxDelay(indexSpan(pre, post, a.rowLength(post)))
}

func (a *AllToAll) Generate(pre, post slicing.Slice, synapseType uint8) (Table, error) {
	rowLength := a.rowLength(post)
	table := make(Table, 0, pre.NAtoms()*post.NAtoms())
	indices := make([]int, 0, cap(table))
	for source := pre.LoAtom; source <= pre.HiAtom; source++ {
		for target := post.LoAtom; target <= post.HiAtom; target++ {
			if source == target && a.skipsSelf() {
				continue
			}
			table = append(table, Record{Source: uint32(source), Target: uint32(target)})
			indices = append(indices, source*rowLength+target)
		}
	}
	if err := a.fill(a.Name(), table, indices, synapseType, a.rng(pre, post)); nil != err {
		return nil, err
	}
	return table, nil
}

func (a *AllToAll) ConnectorID() uint32 {
	return ALL_TO_ALL
}

func (a *AllToAll) ParamBlockSize() int {
	return 4
}

func (a *AllToAll) GeneratesOnMachine() bool {
	return a.onMachine()
}

// ParamBlock is one word, 1 when atom i may connect to atom i.
func (a *AllToAll) ParamBlock(pre, post slicing.Slice) ([]uint32, error) {
	return []uint32{boolWord(!a.skipsSelf())}, nil
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
