package observer

import (
	"testing"

	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/memory"
)

func TestObserver_TicksPerPhaseAndEndsOnce(t *testing.T) {
	mem := memory.New("observer_test", nil)
	calls := 0
	obs := New(mem, func(m *memory.Memory) {
		if m != mem {
			t.Fatalf("expected the observed registry in the callback")
		}
		calls++
	}, nil)

	var ticked []string
	fn := func(phase Phase, m *memory.Memory, logger *archivist.Archivist) {
		ticked = append(ticked, phase.Name)
	}
	obs.RegisterTickFunction(&fn)

	obs.Begin("partition")
	obs.End(4)
	obs.Begin("filter")
	obs.End(2)
	if len(ticked) != 2 || ticked[1] != "filter" {
		t.Fatalf("expected a tick per phase, got %v", ticked)
	}
	if obs.Phases()[0].Items != 4 || obs.ReachedEndgame() {
		t.Fatalf("unexpected observer state %+v", obs.Phases())
	}

	obs.Endgame()
	obs.Endgame()
	if calls != 1 || !obs.ReachedEndgame() {
		t.Fatalf("expected exactly one callback, got %d", calls)
	}

	obs.Restart()
	if 0 != len(obs.Phases()) || obs.ReachedEndgame() {
		t.Fatalf("expected restart to clear the pass")
	}
	obs.Endgame()
	if calls != 2 {
		t.Fatalf("expected the callback again after restart, got %d", calls)
	}
}
