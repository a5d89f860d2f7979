package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/voodooEntity/neurosplit/src/system/connector"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

func setupFreshMachineGraph(t *testing.T, nVertices int) *MachineGraph {
	g := NewMachineGraph()
	for i := 0; i < nVertices; i++ {
		if _, err := g.AddVertex(&MachineVertex{Label: "v", Slice: slicing.New(i, i)}); nil != err {
			t.Fatalf("unexpected error %v", err)
		}
	}
	return g
}

func TestApplicationGraph_PopulationsAndProjections(t *testing.T) {
	app := NewApplicationGraph()
	pre, err := app.AddPopulation(&Population{Label: "retina", NAtoms: 32, MaxAtomsPerCore: 16})
	if nil != err || pre.ID != 1 {
		t.Fatalf("expected population 1, got %v (%v)", pre, err)
	}
	post, _ := app.AddPopulation(&Population{Label: "cortex", NAtoms: 16, MaxAtomsPerCore: 16})

	var confErr *failure.ConfigurationError
	if _, err := app.AddPopulation(&Population{Label: "retina", NAtoms: 1}); !errors.As(err, &confErr) {
		t.Fatalf("expected duplicate label to be rejected, got %v", err)
	}
	if _, err := app.AddProjection(&Projection{Pre: pre.ID, Post: post.ID, Kind: EDGE_PROJECTION}); !errors.As(err, &confErr) {
		t.Fatalf("expected projection without connector to be rejected, got %v", err)
	}
	if _, err := app.AddProjection(&Projection{Pre: pre.ID, Post: 9, Kind: EDGE_PLAIN}); !errors.As(err, &confErr) {
		t.Fatalf("expected unknown population to be rejected, got %v", err)
	}
	proj, err := app.AddProjection(&Projection{Pre: pre.ID, Post: post.ID, Kind: EDGE_PROJECTION, Connector: connector.NewOneToOne(connector.Synapses{})})
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if proj.Partition != SPIKE_PARTITION || proj.Label != "retina_to_cortex" {
		t.Fatalf("expected defaults, got %q / %q", proj.Partition, proj.Label)
	}
	if app.PopulationByLabel("cortex") != post || app.Projection(proj.ID) != proj {
		t.Fatalf("lookups failed")
	}

	app.RememberMachineEdge(proj.ID, 7)
	app.RememberMachineEdge(proj.ID, 3)
	if got := app.MachineEdgesOf(proj.ID); !reflect.DeepEqual(got, []int{3, 7}) {
		t.Fatalf("expected [3 7], got %v", got)
	}
	app.ForgetMachineEdges(proj.ID)
	if 0 != len(app.MachineEdgesOf(proj.ID)) {
		t.Fatalf("expected relations to be forgotten")
	}
}

func TestMachineGraph_IDsAndPartitions(t *testing.T) {
	g := setupFreshMachineGraph(t, 3)
	if g.NVertices() != 3 || g.Vertices()[2].ID != 3 {
		t.Fatalf("expected vertices 1..3")
	}
	if _, err := g.AddEdge(&MachineEdge{Pre: 1, Post: 2}, SPIKE_PARTITION); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := g.AddEdge(&MachineEdge{Pre: 1, Post: 3}, SPIKE_PARTITION); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := g.AddEdge(&MachineEdge{Pre: 2, Post: 3}, "COMMAND"); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	var precondition *failure.PreconditionError
	if _, err := g.AddEdge(&MachineEdge{Pre: 1, Post: 42}, SPIKE_PARTITION); !errors.As(err, &precondition) {
		t.Fatalf("expected unknown vertex to be rejected, got %v", err)
	}
	partitions := g.Partitions()
	if len(partitions) != 2 || !reflect.DeepEqual(partitions[0].Edges, []int{1, 2}) || partitions[1].Identifier != "COMMAND" {
		t.Fatalf("unexpected partitions %+v", partitions)
	}
	key := PartitionKey{Pre: 1, Identifier: SPIKE_PARTITION}
	if err := g.AddPartitionConstraint(key, Constraint{Kind: CONSTRAINT_FIXED_KEY, Key: 0x100}); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if err := g.AddPartitionConstraint(PartitionKey{Pre: 3, Identifier: SPIKE_PARTITION}, Constraint{}); !errors.As(err, &precondition) {
		t.Fatalf("expected missing partition to be rejected, got %v", err)
	}
}

func TestMachineGraph_PresetIDsArePreserved(t *testing.T) {
	g := NewMachineGraph()
	if id, _ := g.AddVertex(&MachineVertex{ID: 5}); id != 5 {
		t.Fatalf("expected preset id 5, got %d", id)
	}
	if id, _ := g.AddVertex(&MachineVertex{}); id != 6 {
		t.Fatalf("expected next id 6, got %d", id)
	}
	var precondition *failure.PreconditionError
	if _, err := g.AddVertex(&MachineVertex{ID: 5}); !errors.As(err, &precondition) {
		t.Fatalf("expected duplicate id to be rejected, got %v", err)
	}
}

func TestMachineGraph_RemoveVertexDropsItsEdges(t *testing.T) {
	g := setupFreshMachineGraph(t, 3)
	g.AddEdge(&MachineEdge{Pre: 1, Post: 2}, SPIKE_PARTITION)
	g.AddEdge(&MachineEdge{Pre: 1, Post: 3}, SPIKE_PARTITION)
	g.AddEdge(&MachineEdge{Pre: 3, Post: 2}, SPIKE_PARTITION)
	g.RemoveVertex(2)
	if g.NVertices() != 2 || g.NEdges() != 1 || nil == g.Edge(2) {
		t.Fatalf("expected only edge 2 to survive, got %d edges", g.NEdges())
	}
	partitions := g.Partitions()
	if len(partitions) != 1 || !reflect.DeepEqual(partitions[0].Edges, []int{2}) {
		t.Fatalf("unexpected partitions %+v", partitions)
	}
}
