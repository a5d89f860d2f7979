package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/voodooEntity/neurosplit/src/system/connector"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

type fixture struct {
	app  *graph.ApplicationGraph
	mg   *graph.MachineGraph
	pre  []int
	post []int
	proj *graph.Projection
}

// setupFresh tiles two 16 atom populations into four slices each and joins
// them one to one through every slice pair.
func setupFresh(t *testing.T) *fixture {
	f := &fixture{app: graph.NewApplicationGraph(), mg: graph.NewMachineGraph()}
	pre, _ := f.app.AddPopulation(&graph.Population{Label: "pre", NAtoms: 16, MaxAtomsPerCore: 4})
	post, _ := f.app.AddPopulation(&graph.Population{Label: "post", NAtoms: 16, MaxAtomsPerCore: 4})
	proj, err := f.app.AddProjection(&graph.Projection{Pre: pre.ID, Post: post.ID, Kind: graph.EDGE_PROJECTION, Connector: connector.NewOneToOne(connector.Synapses{})})
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	f.proj = proj
	for lo := 0; lo < 16; lo += 4 {
		id, _ := f.mg.AddVertex(&graph.MachineVertex{Label: "pre_State:" + slicing.New(lo, lo+3).String(), Population: pre.ID, Slice: slicing.New(lo, lo+3)})
		f.pre = append(f.pre, id)
	}
	for lo := 0; lo < 16; lo += 4 {
		id, _ := f.mg.AddVertex(&graph.MachineVertex{Label: "post_Connectivity:" + slicing.New(lo, lo+3).String(), Population: post.ID, Slice: slicing.New(lo, lo+3)})
		f.post = append(f.post, id)
	}
	for _, src := range f.pre {
		for _, dst := range f.post {
			edgeID, err := f.mg.AddEdge(&graph.MachineEdge{Pre: src, Post: dst, Projection: proj.ID, Kind: graph.EDGE_PROJECTION, Label: "e"}, graph.SPIKE_PARTITION)
			if nil != err {
				t.Fatalf("unexpected error %v", err)
			}
			f.app.RememberMachineEdge(proj.ID, edgeID)
		}
	}
	return f
}

func TestFilter_PrunesEmptyPairsAndKeepsVertices(t *testing.T) {
	f := setupFresh(t)
	res, err := Filter(f.app, f.mg, nil)
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Pruned != 12 || res.Retained != 4 {
		t.Fatalf("expected 12 pruned and 4 retained, got %d / %d", res.Pruned, res.Retained)
	}
	if res.Graph.NVertices() != 8 || res.Graph.NEdges() != 4 {
		t.Fatalf("expected 8 vertices and 4 edges, got %d / %d", res.Graph.NVertices(), res.Graph.NEdges())
	}
	for i, id := range f.pre {
		if res.Graph.Vertex(id) != f.mg.Vertex(id) {
			t.Fatalf("vertex %d not preserved", id)
		}
		partition := res.Graph.Partition(graph.PartitionKey{Pre: id, Identifier: graph.SPIKE_PARTITION})
		if nil == partition || len(partition.Edges) != 1 || res.Graph.Edge(partition.Edges[0]).Post != f.post[i] {
			t.Fatalf("expected pre slice %d to keep only its diagonal edge", i)
		}
	}
	// the surviving ids are the diagonal of the 4x4 edge grid
	if got := f.app.MachineEdgesOf(f.proj.ID); !reflect.DeepEqual(got, []int{1, 6, 11, 16}) {
		t.Fatalf("expected remembered edges [1 6 11 16], got %v", got)
	}
}

func TestFilter_KeepsConstraintsOfSurvivingPartitions(t *testing.T) {
	f := setupFresh(t)
	key := graph.PartitionKey{Pre: f.pre[1], Identifier: graph.SPIKE_PARTITION}
	if err := f.mg.AddPartitionConstraint(key, graph.Constraint{Kind: graph.CONSTRAINT_FIXED_KEY, Key: 0x800}); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	res, err := Filter(f.app, f.mg, nil)
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	got := res.Graph.Partition(key).Constraints
	if len(got) != 1 || got[0].Key != 0x800 {
		t.Fatalf("expected the fixed key constraint to survive, got %+v", got)
	}
}

func TestFilter_PlainEdgesAreNeverPruned(t *testing.T) {
	f := setupFresh(t)
	if _, err := f.mg.AddEdge(&graph.MachineEdge{Pre: f.pre[0], Post: f.post[3], Kind: graph.EDGE_PLAIN, Label: "command"}, "COMMAND"); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	res, err := Filter(f.app, f.mg, nil)
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Retained != 5 || nil == res.Graph.Partition(graph.PartitionKey{Pre: f.pre[0], Identifier: "COMMAND"}) {
		t.Fatalf("expected the plain edge to survive, retained %d", res.Retained)
	}
}

func TestFilter_UnknownEdgeKindIsAConfigurationError(t *testing.T) {
	f := setupFresh(t)
	f.mg.AddEdge(&graph.MachineEdge{Pre: f.pre[0], Post: f.post[0], Label: "mystery"}, graph.SPIKE_PARTITION)
	_, err := Filter(f.app, f.mg, nil)
	var confErr *failure.ConfigurationError
	if !errors.As(err, &confErr) || confErr.Entity != "edge mystery" {
		t.Fatalf("expected configuration error naming the edge, got %v", err)
	}
}

func TestFilter_PrunesDisjointMappingRows(t *testing.T) {
	f := &fixture{app: graph.NewApplicationGraph(), mg: graph.NewMachineGraph()}
	pre, _ := f.app.AddPopulation(&graph.Population{Label: "dvs", NAtoms: 32, MaxAtomsPerCore: 4})
	post, _ := f.app.AddPopulation(&graph.Population{Label: "grid", NAtoms: 16, MaxAtomsPerCore: 8})
	mapping, err := connector.NewMapping(connector.Synapses{}, 4, 4, 0, 2, 1, 0)
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	proj, _ := f.app.AddProjection(&graph.Projection{Pre: pre.ID, Post: post.ID, Kind: graph.EDGE_PROJECTION, Connector: mapping})
	src, _ := f.mg.AddVertex(&graph.MachineVertex{Slice: slicing.New(0, 3)})
	low, _ := f.mg.AddVertex(&graph.MachineVertex{Slice: slicing.New(0, 7)})
	high, _ := f.mg.AddVertex(&graph.MachineVertex{Slice: slicing.New(8, 15)})
	f.mg.AddEdge(&graph.MachineEdge{Pre: src, Post: low, Projection: proj.ID, Kind: graph.EDGE_PROJECTION}, graph.SPIKE_PARTITION)
	f.mg.AddEdge(&graph.MachineEdge{Pre: src, Post: high, Projection: proj.ID, Kind: graph.EDGE_PROJECTION}, graph.SPIKE_PARTITION)

	res, err := Filter(f.app, f.mg, nil)
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Pruned != 1 || nil == res.Graph.Edge(1) || nil != res.Graph.Edge(2) {
		t.Fatalf("expected only the disjoint row band to be pruned, pruned %d", res.Pruned)
	}
	table, _ := mapping.Generate(slicing.New(0, 3), slicing.New(8, 15), 0)
	if 0 != len(table) {
		t.Fatalf("expected the pruned pair to generate nothing, got %d records", len(table))
	}
}
