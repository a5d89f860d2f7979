package memory

import (
	"math/rand"
	"testing"

	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

const charset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// every test gets its own gits instance
func setupFresh() *Memory {
	return New(GenerateRandomString(10), nil)
}

func seedUnits(mem *Memory, population string, slices ...slicing.Slice) {
	mem.RegisterPopulation(population, slices[len(slices)-1].HiAtom+1)
	var units []UnitRecord
	for i, s := range slices {
		units = append(units,
			UnitRecord{Label: population + "_State:" + s.String(), Role: graph.ROLE_STATE, Slice: s, VertexID: 2*i + 1, Chip: 0, Core: 2 * i},
			UnitRecord{Label: population + "_Connectivity:" + s.String(), Role: graph.ROLE_CONNECTIVITY, Slice: s, VertexID: 2*i + 2, Chip: 0, Core: 2*i + 1},
		)
	}
	mem.RegisterUnits(population, units)
}

func TestRegisterPopulation_IsIdempotent(t *testing.T) {
	mem := setupFresh()
	first := mem.RegisterPopulation("retina", 32)
	second := mem.RegisterPopulation("retina", 32)
	if 0 == first || first != second {
		t.Fatalf("expected the same non zero id twice, got %d and %d", first, second)
	}
	if other := mem.RegisterPopulation("cortex", 8); other == first {
		t.Fatalf("expected a new id for a new population, got %d", other)
	}
}

func TestUnitsOf_SortedBySliceAndFilteredByRole(t *testing.T) {
	mem := setupFresh()
	seedUnits(mem, "retina", slicing.New(16, 31), slicing.New(0, 15))

	state := mem.UnitsOf("retina", graph.ROLE_STATE)
	if len(state) != 2 {
		t.Fatalf("expected 2 state units, got %d", len(state))
	}
	if state[0].Slice != slicing.New(0, 15) || state[1].Slice != slicing.New(16, 31) {
		t.Fatalf("expected units ordered by slice, got %v then %v", state[0].Slice, state[1].Slice)
	}
	if state[0].Label != "retina_State:0-15" || state[0].Core != 2 || state[0].VertexID != 3 {
		t.Fatalf("unexpected unit %+v", state[0])
	}
	if all := mem.UnitsOf("retina", ""); len(all) != 4 {
		t.Fatalf("expected 4 units in total, got %d", len(all))
	}
	if none := mem.UnitsOf("cortex", graph.ROLE_STATE); 0 != len(none) {
		t.Fatalf("expected no units for an unknown population, got %d", len(none))
	}
}

func TestForgetUnits_UnlinksOnlyThatPopulation(t *testing.T) {
	mem := setupFresh()
	seedUnits(mem, "retina", slicing.New(0, 15))
	seedUnits(mem, "cortex", slicing.New(0, 7))

	if n := mem.ForgetUnits("retina"); n != 2 {
		t.Fatalf("expected 2 units forgotten, got %d", n)
	}
	if left := mem.UnitsOf("retina", ""); 0 != len(left) {
		t.Fatalf("expected retina to have no units, got %d", len(left))
	}
	if kept := mem.UnitsOf("cortex", ""); len(kept) != 2 {
		t.Fatalf("expected cortex to keep 2 units, got %d", len(kept))
	}

	// a repartition registers the population again under the same labels
	seedUnits(mem, "retina", slicing.New(0, 7), slicing.New(8, 15))
	if again := mem.UnitsOf("retina", graph.ROLE_CONNECTIVITY); len(again) != 2 {
		t.Fatalf("expected 2 connectivity units after repartition, got %d", len(again))
	}
}

func TestProvenance_GroupedAndOrdered(t *testing.T) {
	mem := setupFresh()
	mem.RecordProvenance([]ProvenanceRecord{
		{Group: "retina_cortex_STDP_SpikePairRule", Name: "tau_plus_last_entry", Value: 0},
		{Group: "retina_cortex_STDP_IzhikevichRule", Name: "tau_c_last_entry", Value: 1, Report: true, Message: "too short"},
		{Group: "retina_cortex_STDP_IzhikevichRule", Name: "tau_d_last_entry", Value: -3},
	})
	records := mem.Provenance()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Name != "tau_c_last_entry" || !records[0].Report || records[0].Message != "too short" {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].Value != -3 || records[2].Group != "retina_cortex_STDP_SpikePairRule" {
		t.Fatalf("unexpected order %+v", records)
	}
	if n := mem.ForgetProvenance(); n != 3 {
		t.Fatalf("expected 3 items forgotten, got %d", n)
	}
	if left := mem.Provenance(); 0 != len(left) {
		t.Fatalf("expected no provenance left, got %d", len(left))
	}
}

func TestRecord_TransformCreatesTree(t *testing.T) {
	entity := NewRecord(TYPE_RULE, "r").AddChild(NewRecord(TYPE_PROVENANCE, "p").SetInt("Value", 4)).Transform()
	if entity.ID != -1 || entity.Context != CONTEXT || len(entity.ChildRelations) != 1 {
		t.Fatalf("unexpected entity %+v", entity)
	}
	if entity.ChildRelations[0].Target.Properties["Value"] != "4" {
		t.Fatalf("expected child property 4, got %q", entity.ChildRelations[0].Target.Properties["Value"])
	}
}

func stored(mem *Memory, entityType string) int {
	return mem.Gits.Query().Execute(query.New().Read(entityType)).Amount
}

func TestForget_DeletesEntitiesAcrossCycles(t *testing.T) {
	mem := setupFresh()
	for cycle := 0; cycle < 3; cycle++ {
		seedUnits(mem, "retina", slicing.New(0, 7), slicing.New(8, 15))
		mem.RecordProvenance([]ProvenanceRecord{
			{Group: "retina_retina_STDP_SpikePairRule", Name: "tau_plus_last_entry", Value: 1},
			{Group: "retina_retina_STDP_SpikePairRule", Name: "tau_minus_last_entry", Value: 2},
		})
		if n := stored(mem, TYPE_UNIT); n != 4 {
			t.Fatalf("cycle %d: expected 4 stored units, got %d", cycle, n)
		}
		if n := stored(mem, TYPE_PROVENANCE); n != 2 {
			t.Fatalf("cycle %d: expected 2 stored provenance items, got %d", cycle, n)
		}

		mem.ForgetUnits("retina")
		mem.ForgetProvenance()
		if n := stored(mem, TYPE_UNIT); 0 != n {
			t.Fatalf("cycle %d: expected forgotten units to be deleted, got %d", cycle, n)
		}
		if n := stored(mem, TYPE_PROVENANCE); 0 != n {
			t.Fatalf("cycle %d: expected forgotten provenance to be deleted, got %d", cycle, n)
		}
		if n := stored(mem, TYPE_POPULATION); n != 1 {
			t.Fatalf("cycle %d: expected the population to survive, got %d", cycle, n)
		}
	}
}
