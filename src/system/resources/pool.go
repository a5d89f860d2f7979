package resources

import (
	"slices"
	"sync"

	"github.com/voodooEntity/neurosplit/src/system/failure"
)

// Ceilings describe one chip of the target machine. SDRAM is shared by all
// cores of a chip, DTCM and CPU cycles are per core.
type Ceilings struct {
	Chips            int
	CoresPerChip     int
	SDRAMPerChip     int64
	DTCMPerCore      int64
	CPUCyclesPerCore int64
}

// Allocation is where one unit of a group landed.
type Allocation struct {
	Chip int
	Core int
}

// Reservation is the result of one successful group request.
type Reservation struct {
	Chip        int
	Allocations []Allocation
	SDRAM       int64
}

type chipState struct {
	freeSDRAM int64
	freeCores []int
}

// Pool is the placement resource pool shared by every population's compile
// pass. All reservations go through one mutex so a group is either admitted
// entirely or not at all, whoever else is partitioning at the same time.
type Pool struct {
	mu        sync.Mutex
	ceilings  Ceilings
	timesteps int64
	chips     []*chipState
}

// NewPool creates a pool of empty chips. timesteps is the planned run length
// used to turn variable SDRAM into bytes.
func NewPool(ceilings Ceilings, timesteps int64) (*Pool, error) {
	if ceilings.Chips < 1 || ceilings.CoresPerChip < 1 {
		return nil, failure.Configuration("machine", "needs at least one chip with one core, got %d chips x %d cores", ceilings.Chips, ceilings.CoresPerChip)
	}
	if timesteps < 0 {
		return nil, failure.Configuration("machine", "planned timesteps must not be negative, got %d", timesteps)
	}
	pool := &Pool{
		ceilings:  ceilings,
		timesteps: timesteps,
		chips:     make([]*chipState, ceilings.Chips),
	}
	for i := range pool.chips {
		cores := make([]int, ceilings.CoresPerChip)
		for c := range cores {
			cores[c] = c
		}
		pool.chips[i] = &chipState{freeSDRAM: ceilings.SDRAMPerChip, freeCores: cores}
	}
	return pool, nil
}

func (p *Pool) Ceilings() Ceilings {
	return p.ceilings
}

func (p *Pool) Timesteps() int64 {
	return p.timesteps
}

// TryReserveGroup reserves one core per request, all on the same chip, or
// nothing. The first chip able to take the whole group wins so the result
// only depends on the order of previous requests.
func (p *Pool) TryReserveGroup(requests []Container) (Reservation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sdram int64
	for _, req := range requests {
		if req.DTCM > p.ceilings.DTCMPerCore {
			return Reservation{}, &failure.ResourceExhaustedError{Resource: "DTCM", Requested: req.DTCM, Available: p.ceilings.DTCMPerCore}
		}
		if req.CPUCycles > p.ceilings.CPUCyclesPerCore {
			return Reservation{}, &failure.ResourceExhaustedError{Resource: "CPU cycles", Requested: req.CPUCycles, Available: p.ceilings.CPUCyclesPerCore}
		}
		sdram += req.SDRAM(p.timesteps)
	}

	for index, chip := range p.chips {
		if len(chip.freeCores) < len(requests) || chip.freeSDRAM < sdram {
			continue
		}
		res := Reservation{Chip: index, SDRAM: sdram}
		for i := range requests {
			res.Allocations = append(res.Allocations, Allocation{Chip: index, Core: chip.freeCores[i]})
		}
		chip.freeCores = chip.freeCores[len(requests):]
		chip.freeSDRAM -= sdram
		return res, nil
	}

	return Reservation{}, p.exhaustion(len(requests), sdram)
}

// exhaustion explains a failed group request against the best candidate
// chip, cores first since a chip without cores cannot host anything.
func (p *Pool) exhaustion(nCores int, sdram int64) error {
	bestCores := 0
	var bestSDRAM int64 = -1
	for _, chip := range p.chips {
		bestCores = max(bestCores, len(chip.freeCores))
		if len(chip.freeCores) >= nCores && chip.freeSDRAM > bestSDRAM {
			bestSDRAM = chip.freeSDRAM
		}
	}
	if -1 == bestSDRAM {
		return &failure.ResourceExhaustedError{Resource: "cores", Requested: int64(nCores), Available: int64(bestCores)}
	}
	return &failure.ResourceExhaustedError{Resource: "SDRAM", Requested: sdram, Available: bestSDRAM}
}

// Release gives a reservation back to its chip.
func (p *Pool) Release(res Reservation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res.Chip < 0 || res.Chip >= len(p.chips) || 0 == len(res.Allocations) {
		return
	}
	chip := p.chips[res.Chip]
	for _, alloc := range res.Allocations {
		chip.freeCores = append(chip.freeCores, alloc.Core)
	}
	slices.Sort(chip.freeCores)
	chip.freeSDRAM += res.SDRAM
}

// FreeSDRAM returns the unreserved SDRAM of a chip.
func (p *Pool) FreeSDRAM(chip int) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chips[chip].freeSDRAM
}

// FreeCores returns the number of unreserved cores of a chip.
func (p *Pool) FreeCores(chip int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.chips[chip].freeCores)
}
