package resources

import "github.com/voodooEntity/neurosplit/src/system/slicing"

// Kind selects which half of a unit pair is estimated.
type Kind string

const (
	KIND_STATE        Kind = "state"
	KIND_CONNECTIVITY Kind = "connectivity"
)

const (
	// recording region: one word holding the region count, then size and
	// address per recordable
	RECORDING_HEADER_BYTES     = 4
	RECORDING_PER_REGION_BYTES = 8
	// provenance items every unit writes regardless of its kind
	SYSTEM_PROVENANCE_ITEMS = 5
)

// Recordable is one variable a unit can record.
type Recordable struct {
	Name string
	// BytesPerAtom per timestep; ignored for bitfield recordables
	BytesPerAtom int64
	// Bitfield recordables (spikes) pack one bit per atom into words
	Bitfield bool
}

// ComponentProfile is the cost model of one unit kind.
type ComponentProfile struct {
	ConstantSDRAM    int64
	SDRAMPerAtom     int64
	DTCMPerAtom      int64
	CPUCyclesPerAtom int64
	ProvenanceItems  int
	Recordables      []Recordable
}

// CommonProfile is the cost every unit pays once.
type CommonProfile struct {
	ConstantSDRAM int64
	DTCM          int64
	CPUCycles     int64
}

// Profile is the cost model of a state/connectivity unit pair.
type Profile struct {
	Common       CommonProfile
	State        ComponentProfile
	Connectivity ComponentProfile
}

func (p Profile) component(kind Kind) ComponentProfile {
	if KIND_STATE == kind {
		return p.State
	}
	return p.Connectivity
}

// IsRecordable reports whether name is recorded by units of the given kind.
func (p Profile) IsRecordable(kind Kind, name string) bool {
	for _, r := range p.component(kind).Recordables {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RecordedRegions returns the region indices of the selected recordables.
func (p Profile) RecordedRegions(kind Kind, selected map[string]bool) []int {
	var regions []int
	for i, r := range p.component(kind).Recordables {
		if selected[r.Name] {
			regions = append(regions, i)
		}
	}
	return regions
}

func recordingHeader(n int) int64 {
	return RECORDING_HEADER_BYTES + RECORDING_PER_REGION_BYTES*int64(n)
}

func provenanceBytes(items int) int64 {
	return int64(SYSTEM_PROVENANCE_ITEMS+items) * BYTES_PER_WORD
}

func recordedBytesPerTimestep(r Recordable, nAtoms int64) int64 {
	if r.Bitfield {
		return (nAtoms + 31) / 32 * BYTES_PER_WORD
	}
	return r.BytesPerAtom * nAtoms
}

// Estimate is the cost of one unit of the given kind covering the slice.
// selected holds the recordable names chosen downstream.
func (p Profile) Estimate(kind Kind, s slicing.Slice, selected map[string]bool) Container {
	comp := p.component(kind)
	n := int64(s.NAtoms())

	constant := p.Common.ConstantSDRAM +
		recordingHeader(len(comp.Recordables)) +
		provenanceBytes(comp.ProvenanceItems) +
		comp.ConstantSDRAM +
		comp.SDRAMPerAtom*n

	var variable int64
	for _, r := range comp.Recordables {
		if selected[r.Name] {
			variable += recordedBytesPerTimestep(r, n)
		}
	}

	return Container{
		ConstantSDRAM: constant,
		VariableSDRAM: variable,
		DTCM:          p.Common.DTCM + comp.DTCMPerAtom*n,
		CPUCycles:     p.Common.CPUCycles + comp.CPUCyclesPerAtom*n,
	}
}

// EstimateJoint is the cost of the state and connectivity pair together.
func (p Profile) EstimateJoint(s slicing.Slice, selected map[string]bool) Container {
	return p.Estimate(KIND_STATE, s, selected).Add(p.Estimate(KIND_CONNECTIVITY, s, selected))
}
