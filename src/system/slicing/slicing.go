// Package slicing tiles a population's atoms into per-core slices.
package slicing

import (
	"strconv"

	"github.com/voodooEntity/neurosplit/src/system/failure"
)

// Slice is the inclusive atom range [LoAtom, HiAtom] of one population.
type Slice struct {
	LoAtom int
	HiAtom int
}

func New(lo, hi int) Slice {
	return Slice{LoAtom: lo, HiAtom: hi}
}

func (s Slice) NAtoms() int {
	return s.HiAtom - s.LoAtom + 1
}

func (s Slice) Contains(atom int) bool {
	return atom >= s.LoAtom && atom <= s.HiAtom
}

// Overlap returns the shared atom range and whether there is one.
func (s Slice) Overlap(o Slice) (Slice, bool) {
	lo := max(s.LoAtom, o.LoAtom)
	hi := min(s.HiAtom, o.HiAtom)
	if lo > hi {
		return Slice{}, false
	}
	return Slice{LoAtom: lo, HiAtom: hi}, true
}

func (s Slice) String() string {
	return strconv.Itoa(s.LoAtom) + "-" + strconv.Itoa(s.HiAtom)
}

// Validate checks the slice against a population of nAtoms atoms.
func (s Slice) Validate(nAtoms int) error {
	if s.LoAtom < 0 || s.LoAtom > s.HiAtom || s.HiAtom >= nAtoms {
		return failure.Precondition("slice "+s.String(), "malformed bounds for population of %d atoms", nAtoms)
	}
	return nil
}

// Fixed returns the greedy fixed-width tiling of [0, nAtoms). All slices are
// maxAtomsPerCore wide except possibly the last one.
func Fixed(nAtoms int, maxAtomsPerCore int) ([]Slice, error) {
	if nAtoms < 1 {
		return nil, failure.Configuration("population", "needs at least one atom, got %d", nAtoms)
	}
	if maxAtomsPerCore < 1 {
		return nil, failure.Configuration("population", "max atoms per core must be at least 1, got %d", maxAtomsPerCore)
	}
	slices := make([]Slice, 0, (nAtoms+maxAtomsPerCore-1)/maxAtomsPerCore)
	for low := 0; low < nAtoms; low += maxAtomsPerCore {
		slices = append(slices, Slice{LoAtom: low, HiAtom: min(low+maxAtomsPerCore-1, nAtoms-1)})
	}
	return slices, nil
}
