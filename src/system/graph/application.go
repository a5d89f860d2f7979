// Package graph holds the two graphs of a compile pass. The application graph
// describes populations and the projections between them, the machine graph
// the per-slice units and edges derived from it. Cross references are IDs
// resolved through the owning graph, never pointers back into it.
package graph

import (
	"slices"

	"github.com/voodooEntity/neurosplit/src/system/connector"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/plasticity"
	"github.com/voodooEntity/neurosplit/src/system/resources"
)

// SPIKE_PARTITION is the outgoing partition projections use unless told
// otherwise.
const SPIKE_PARTITION = "SPIKE"

type Population struct {
	ID              int
	Label           string
	NAtoms          int
	MaxAtomsPerCore int
	Profile         resources.Profile
	// Recording lists the recordables selected for this population
	Recording []string
}

// Recorded returns Recording as a set.
func (p *Population) Recorded() map[string]bool {
	recorded := make(map[string]bool, len(p.Recording))
	for _, name := range p.Recording {
		recorded[name] = true
	}
	return recorded
}

type Projection struct {
	ID          int
	Label       string
	Pre         int
	Post        int
	Connector   connector.Connector
	SynapseType uint8
	Partition   string
	Kind        EdgeKind
	// Dynamics is nil for static synapses
	Dynamics          *plasticity.STDP
	GenerateOnMachine bool
}

type ApplicationGraph struct {
	populations  []*Population
	byLabel      map[string]int
	projections  []*Projection
	machineEdges map[int][]int
}

func NewApplicationGraph() *ApplicationGraph {
	return &ApplicationGraph{
		byLabel:      make(map[string]int),
		machineEdges: make(map[int][]int),
	}
}

// AddPopulation assigns the next population ID. Labels must be unique since
// every unit label is derived from them.
func (a *ApplicationGraph) AddPopulation(p *Population) (*Population, error) {
	if "" == p.Label {
		return nil, failure.Configuration("population", "label must not be empty")
	}
	if _, ok := a.byLabel[p.Label]; ok {
		return nil, failure.Configuration("population "+p.Label, "label already in use")
	}
	if p.NAtoms < 1 {
		return nil, failure.Configuration("population "+p.Label, "needs at least one atom, got %d", p.NAtoms)
	}
	p.ID = len(a.populations) + 1
	a.populations = append(a.populations, p)
	a.byLabel[p.Label] = p.ID
	return p, nil
}

func (a *ApplicationGraph) AddProjection(p *Projection) (*Projection, error) {
	pre, post := a.Population(p.Pre), a.Population(p.Post)
	if nil == pre || nil == post {
		return nil, failure.Configuration("projection "+p.Label, "unknown population %d -> %d", p.Pre, p.Post)
	}
	switch p.Kind {
	case EDGE_PROJECTION:
		if nil == p.Connector {
			return nil, failure.Configuration("projection "+p.Label, "needs a connector")
		}
	case EDGE_PLAIN:
	default:
		return nil, failure.Configuration("projection "+p.Label, "unknown edge kind %d", p.Kind)
	}
	if "" == p.Partition {
		p.Partition = SPIKE_PARTITION
	}
	if "" == p.Label {
		p.Label = pre.Label + "_to_" + post.Label
	}
	p.ID = len(a.projections) + 1
	a.projections = append(a.projections, p)
	return p, nil
}

func (a *ApplicationGraph) Population(id int) *Population {
	if id < 1 || id > len(a.populations) {
		return nil
	}
	return a.populations[id-1]
}

func (a *ApplicationGraph) PopulationByLabel(label string) *Population {
	if id, ok := a.byLabel[label]; ok {
		return a.Population(id)
	}
	return nil
}

func (a *ApplicationGraph) Populations() []*Population {
	return a.populations
}

func (a *ApplicationGraph) Projection(id int) *Projection {
	if id < 1 || id > len(a.projections) {
		return nil
	}
	return a.projections[id-1]
}

func (a *ApplicationGraph) Projections() []*Projection {
	return a.projections
}

// RememberMachineEdge records that a machine edge was derived from a
// projection.
func (a *ApplicationGraph) RememberMachineEdge(projection int, edge int) {
	a.machineEdges[projection] = append(a.machineEdges[projection], edge)
}

func (a *ApplicationGraph) ForgetMachineEdges(projection int) {
	delete(a.machineEdges, projection)
}

// MachineEdgesOf returns the machine edge IDs of a projection in ascending
// order.
func (a *ApplicationGraph) MachineEdgesOf(projection int) []int {
	edges := slices.Clone(a.machineEdges[projection])
	slices.Sort(edges)
	return edges
}
