package graph

import (
	"strconv"

	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/resources"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

type Role string

const (
	ROLE_STATE        Role = "State"
	ROLE_CONNECTIVITY Role = "Connectivity"
)

// EdgeKind tells the edge filter how to decide whether an edge is empty.
type EdgeKind int

const (
	EDGE_UNKNOWN EdgeKind = iota
	// EDGE_PROJECTION edges are empty when their connector says so
	EDGE_PROJECTION
	// EDGE_PLAIN edges are never filtered
	EDGE_PLAIN
)

func (k EdgeKind) String() string {
	switch k {
	case EDGE_PROJECTION:
		return "projection"
	case EDGE_PLAIN:
		return "plain"
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

type ConstraintKind string

const (
	// pins a vertex to the chip and core it was admitted on
	CONSTRAINT_CHIP_AND_CORE ConstraintKind = "ChipAndCore"
	CONSTRAINT_SAME_CHIP     ConstraintKind = "SameChip"
	// asks the router to give the partition a fixed key space
	CONSTRAINT_FIXED_KEY ConstraintKind = "FixedKey"
)

type Constraint struct {
	Kind ConstraintKind
	Chip int
	Core int
	Key  uint32
}

type MachineVertex struct {
	ID              int
	Label           string
	Role            Role
	Population      int
	Slice           slicing.Slice
	Resources       resources.Container
	RecordedRegions []int
	Constraints     []Constraint
}

type MachineEdge struct {
	ID         int
	Pre        int
	Post       int
	Projection int
	Kind       EdgeKind
	Label      string
}

// Target is a vertex an edge may end on, with the kind of edge it accepts.
// Targets accepting projection edges may have to merge several incoming
// streams downstream.
type Target struct {
	Vertex  *MachineVertex
	Accepts EdgeKind
}

type PartitionKey struct {
	Pre        int
	Identifier string
}

// OutgoingPartition groups the edges leaving one vertex under one
// identifier; routing constraints attach to the partition.
type OutgoingPartition struct {
	Pre         int
	Identifier  string
	Edges       []int
	Constraints []Constraint
}

// MachineGraph iterates vertices, edges and partitions in insertion order.
// It is not safe for concurrent mutation.
type MachineGraph struct {
	vertices       map[int]*MachineVertex
	vertexOrder    []int
	edges          map[int]*MachineEdge
	edgeOrder      []int
	partitions     map[PartitionKey]*OutgoingPartition
	partitionOrder []PartitionKey
	nextVertex     int
	nextEdge       int
}

func NewMachineGraph() *MachineGraph {
	return &MachineGraph{
		vertices:   make(map[int]*MachineVertex),
		edges:      make(map[int]*MachineEdge),
		partitions: make(map[PartitionKey]*OutgoingPartition),
		nextVertex: 1,
		nextEdge:   1,
	}
}

// AddVertex keeps a preset ID, which is how copies preserve identity, and
// assigns the next free one otherwise.
func (g *MachineGraph) AddVertex(v *MachineVertex) (int, error) {
	if 0 == v.ID {
		v.ID = g.nextVertex
	}
	if _, ok := g.vertices[v.ID]; ok {
		return 0, failure.Precondition("vertex "+v.Label, "id %d already in graph", v.ID)
	}
	g.vertices[v.ID] = v
	g.vertexOrder = append(g.vertexOrder, v.ID)
	g.nextVertex = max(g.nextVertex, v.ID+1)
	return v.ID, nil
}

// RemoveVertex drops a vertex together with every edge touching it.
func (g *MachineGraph) RemoveVertex(id int) {
	if _, ok := g.vertices[id]; !ok {
		return
	}
	var touching []int
	for _, edgeID := range g.edgeOrder {
		if e := g.edges[edgeID]; e.Pre == id || e.Post == id {
			touching = append(touching, edgeID)
		}
	}
	for _, edgeID := range touching {
		g.removeEdge(edgeID)
	}
	delete(g.vertices, id)
	g.vertexOrder = without(g.vertexOrder, id)
}

func (g *MachineGraph) removeEdge(id int) {
	e := g.edges[id]
	delete(g.edges, id)
	g.edgeOrder = without(g.edgeOrder, id)
	for _, key := range g.partitionOrder {
		if key.Pre == e.Pre {
			g.partitions[key].Edges = without(g.partitions[key].Edges, id)
		}
	}
}

func without(ids []int, id int) []int {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}

// AddEdge adds the edge to the outgoing partition (pre, identifier),
// creating the partition on first use.
func (g *MachineGraph) AddEdge(e *MachineEdge, identifier string) (int, error) {
	if _, ok := g.vertices[e.Pre]; !ok {
		return 0, failure.Precondition("edge "+e.Label, "unknown pre vertex %d", e.Pre)
	}
	if _, ok := g.vertices[e.Post]; !ok {
		return 0, failure.Precondition("edge "+e.Label, "unknown post vertex %d", e.Post)
	}
	if 0 == e.ID {
		e.ID = g.nextEdge
	}
	if _, ok := g.edges[e.ID]; ok {
		return 0, failure.Precondition("edge "+e.Label, "id %d already in graph", e.ID)
	}
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.nextEdge = max(g.nextEdge, e.ID+1)
	p := g.partition(PartitionKey{Pre: e.Pre, Identifier: identifier})
	p.Edges = append(p.Edges, e.ID)
	return e.ID, nil
}

func (g *MachineGraph) partition(key PartitionKey) *OutgoingPartition {
	if p, ok := g.partitions[key]; ok {
		return p
	}
	p := &OutgoingPartition{Pre: key.Pre, Identifier: key.Identifier}
	g.partitions[key] = p
	g.partitionOrder = append(g.partitionOrder, key)
	return p
}

// AddPartitionConstraint attaches a constraint to an existing partition.
func (g *MachineGraph) AddPartitionConstraint(key PartitionKey, c Constraint) error {
	p, ok := g.partitions[key]
	if !ok {
		return failure.Precondition("partition "+key.Identifier, "no partition %s on vertex %d", key.Identifier, key.Pre)
	}
	p.Constraints = append(p.Constraints, c)
	return nil
}

func (g *MachineGraph) Vertex(id int) *MachineVertex {
	return g.vertices[id]
}

func (g *MachineGraph) Edge(id int) *MachineEdge {
	return g.edges[id]
}

func (g *MachineGraph) Partition(key PartitionKey) *OutgoingPartition {
	return g.partitions[key]
}

func (g *MachineGraph) Vertices() []*MachineVertex {
	ret := make([]*MachineVertex, 0, len(g.vertexOrder))
	for _, id := range g.vertexOrder {
		ret = append(ret, g.vertices[id])
	}
	return ret
}

func (g *MachineGraph) Edges() []*MachineEdge {
	ret := make([]*MachineEdge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		ret = append(ret, g.edges[id])
	}
	return ret
}

// Partitions skips partitions that lost all their edges.
func (g *MachineGraph) Partitions() []*OutgoingPartition {
	ret := make([]*OutgoingPartition, 0, len(g.partitionOrder))
	for _, key := range g.partitionOrder {
		if p := g.partitions[key]; 0 < len(p.Edges) {
			ret = append(ret, p)
		}
	}
	return ret
}

func (g *MachineGraph) NVertices() int {
	return len(g.vertices)
}

func (g *MachineGraph) NEdges() int {
	return len(g.edges)
}
