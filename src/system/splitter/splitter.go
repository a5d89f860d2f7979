// Package splitter turns one population into state/connectivity unit pairs,
// one pair per fixed-width slice.
package splitter

import (
	"errors"

	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/memory"
	"github.com/voodooEntity/neurosplit/src/system/resources"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

type State int

const (
	STATE_UNPARTITIONED State = iota
	STATE_PARTITIONED
)

func (s State) String() string {
	if STATE_PARTITIONED == s {
		return "partitioned"
	}
	return "unpartitioned"
}

// Splitter owns the units it creates for its population until Reset.
type Splitter struct {
	population *graph.Population
	slices     []slicing.Slice
	memory     *memory.Memory
	log        *archivist.Archivist

	state             State
	stateUnits        []*graph.MachineVertex
	connectivityUnits []*graph.MachineVertex
	reservations      []resources.Reservation
	pool              *resources.Pool
	machineGraph      *graph.MachineGraph
}

// New computes the slicing of the population up front, so a bad atoms per
// core bound fails here and not halfway through a compile. mem may be nil.
func New(population *graph.Population, mem *memory.Memory, logger *archivist.Archivist) (*Splitter, error) {
	if nil == logger {
		logger = archivist.Discard()
	}
	slices, err := slicing.Fixed(population.NAtoms, population.MaxAtomsPerCore)
	if nil != err {
		var confErr *failure.ConfigurationError
		if errors.As(err, &confErr) {
			confErr.Entity = "population " + population.Label
		}
		return nil, err
	}
	return &Splitter{
		population: population,
		slices:     slices,
		memory:     mem,
		log:        logger.Scoped("splitter " + population.Label),
	}, nil
}

func (s *Splitter) Population() *graph.Population {
	return s.population
}

func (s *Splitter) State() State {
	return s.state
}

// CreateMachineVertices reserves and registers one unit pair per slice. Both
// units of a pair are admitted together; if any slice fails, everything this
// call reserved or added is given back before the error is returned.
func (s *Splitter) CreateMachineVertices(pool *resources.Pool, mg *graph.MachineGraph) error {
	if STATE_PARTITIONED == s.state {
		return failure.Precondition("population "+s.population.Label, "already partitioned, reset first")
	}
	s.pool = pool
	s.machineGraph = mg
	recorded := s.population.Recorded()
	profile := s.population.Profile
	progress := s.log.NewProgress("Partitioning "+s.population.Label, len(s.slices))

	for _, slice := range s.slices {
		stateRes := profile.Estimate(resources.KIND_STATE, slice, recorded)
		connRes := profile.Estimate(resources.KIND_CONNECTIVITY, slice, recorded)
		s.log.DebugF(archivist.DEBUG_LEVEL_DETAIL, "slice %s state %+v connectivity %+v", slice, stateRes, connRes)

		reservation, err := pool.TryReserveGroup([]resources.Container{stateRes, connRes})
		if nil != err {
			var exhausted *failure.ResourceExhaustedError
			if errors.As(err, &exhausted) {
				exhausted.Population = s.population.Label
				exhausted.Slice = slice.String()
			}
			s.log.ErrorF("partitioning %s failed at slice %s: %s", s.population.Label, slice, err.Error())
			s.release()
			return err
		}
		s.reservations = append(s.reservations, reservation)

		stateAlloc, connAlloc := reservation.Allocations[0], reservation.Allocations[1]
		stateUnit := &graph.MachineVertex{
			Label:           s.population.Label + "_State:" + slice.String(),
			Role:            graph.ROLE_STATE,
			Population:      s.population.ID,
			Slice:           slice,
			Resources:       stateRes,
			RecordedRegions: profile.RecordedRegions(resources.KIND_STATE, recorded),
			Constraints: []graph.Constraint{
				{Kind: graph.CONSTRAINT_CHIP_AND_CORE, Chip: stateAlloc.Chip, Core: stateAlloc.Core},
			},
		}
		connUnit := &graph.MachineVertex{
			Label:           s.population.Label + "_Connectivity:" + slice.String(),
			Role:            graph.ROLE_CONNECTIVITY,
			Population:      s.population.ID,
			Slice:           slice,
			Resources:       connRes,
			RecordedRegions: profile.RecordedRegions(resources.KIND_CONNECTIVITY, recorded),
			Constraints: []graph.Constraint{
				{Kind: graph.CONSTRAINT_SAME_CHIP, Chip: connAlloc.Chip, Core: connAlloc.Core},
			},
		}
		if err := s.addPair(mg, stateUnit, connUnit); nil != err {
			s.release()
			return err
		}
		progress.Step()
	}

	s.state = STATE_PARTITIONED
	s.register()
	progress.End()
	return nil
}

// addPair adds both units or neither.
func (s *Splitter) addPair(mg *graph.MachineGraph, stateUnit, connUnit *graph.MachineVertex) error {
	if _, err := mg.AddVertex(stateUnit); nil != err {
		return err
	}
	if _, err := mg.AddVertex(connUnit); nil != err {
		mg.RemoveVertex(stateUnit.ID)
		return err
	}
	s.stateUnits = append(s.stateUnits, stateUnit)
	s.connectivityUnits = append(s.connectivityUnits, connUnit)
	return nil
}

func (s *Splitter) register() {
	if nil == s.memory {
		return
	}
	s.memory.RegisterPopulation(s.population.Label, s.population.NAtoms)
	units := make([]memory.UnitRecord, 0, 2*len(s.stateUnits))
	for i := range s.stateUnits {
		for _, unit := range []*graph.MachineVertex{s.stateUnits[i], s.connectivityUnits[i]} {
			units = append(units, memory.UnitRecord{
				Label:    unit.Label,
				Role:     unit.Role,
				Slice:    unit.Slice,
				VertexID: unit.ID,
				Chip:     unit.Constraints[0].Chip,
				Core:     unit.Constraints[0].Core,
			})
		}
	}
	s.memory.RegisterUnits(s.population.Label, units)
}

// release hands every reservation back and removes the units from the
// machine graph they were added to.
func (s *Splitter) release() {
	for _, res := range s.reservations {
		s.pool.Release(res)
	}
	if nil != s.machineGraph {
		for _, unit := range s.stateUnits {
			s.machineGraph.RemoveVertex(unit.ID)
		}
		for _, unit := range s.connectivityUnits {
			s.machineGraph.RemoveVertex(unit.ID)
		}
	}
	s.reservations = nil
	s.stateUnits = nil
	s.connectivityUnits = nil
	s.pool = nil
	s.machineGraph = nil
}

// Reset discards every unit of the population while keeping its topology.
// A later CreateMachineVertices produces the same slices and labels again.
func (s *Splitter) Reset() {
	if STATE_UNPARTITIONED == s.state {
		return
	}
	n := len(s.stateUnits)
	s.release()
	if nil != s.memory {
		s.memory.ForgetUnits(s.population.Label)
	}
	s.state = STATE_UNPARTITIONED
	s.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "reset, %d unit pairs discarded", n)
}

// InComingSlices returns the slices incoming edges are split by. The second
// value reports whether they are exact.
func (s *Splitter) InComingSlices() ([]slicing.Slice, bool) {
	return s.slices, true
}

func (s *Splitter) OutGoingSlices() ([]slicing.Slice, bool) {
	return s.slices, true
}

// OutGoingVertices are the state units; outgoing events always leave from
// them.
func (s *Splitter) OutGoingVertices() []graph.Target {
	return targets(s.stateUnits)
}

// InComingVertices are the connectivity units; incoming connections are
// always applied there.
func (s *Splitter) InComingVertices() []graph.Target {
	return targets(s.connectivityUnits)
}

func targets(units []*graph.MachineVertex) []graph.Target {
	ret := make([]graph.Target, 0, len(units))
	for _, unit := range units {
		ret = append(ret, graph.Target{Vertex: unit, Accepts: graph.EDGE_PROJECTION})
	}
	return ret
}

// MachineVerticesForRecording returns the state units for state recordables
// and the connectivity units for anything else. Unknown names are left to
// whoever validates recording.
func (s *Splitter) MachineVerticesForRecording(name string) []*graph.MachineVertex {
	if s.population.Profile.IsRecordable(resources.KIND_STATE, name) {
		return s.stateUnits
	}
	return s.connectivityUnits
}
