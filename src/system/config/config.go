// Package config handles neurosplit.toml, the description of the target
// machine and of the compile run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/resources"
)

const FILE_NAME = "neurosplit.toml"

// Config represents a neurosplit.toml file.
type Config struct {
	Machine    Machine    `toml:"machine"`
	Simulation Simulation `toml:"simulation"`
	Resources  Resources  `toml:"resources"`

	// Dir is the directory the file was loaded from (set at load time).
	Dir string `toml:"-"`
}

// Machine holds the per chip and per core ceilings.
type Machine struct {
	Chips            int   `toml:"chips"`
	CoresPerChip     int   `toml:"cores_per_chip"`
	SDRAMPerChip     int64 `toml:"sdram_per_chip"`
	DTCMPerCore      int64 `toml:"dtcm_per_core"`
	CPUCyclesPerCore int64 `toml:"cpu_cycles_per_core"`
}

type Simulation struct {
	TimestepUS        int    `toml:"timestep_us"`
	PlannedTimesteps  int64  `toml:"planned_timesteps"`
	MaxAtomsPerCore   int    `toml:"max_atoms_per_core"`
	MaxDelayTimesteps int    `toml:"max_delay_timesteps"`
	Seed              uint64 `toml:"seed"`

	// Workers bounds parallel table generation, 0 means unbounded
	Workers int `toml:"workers"`
	// WeightScales has one entry per synapse type
	WeightScales []float64 `toml:"weight_scales"`
}

type Resources struct {
	Common       CommonCost    `toml:"common"`
	State        ComponentCost `toml:"state"`
	Connectivity ComponentCost `toml:"connectivity"`
}

type CommonCost struct {
	ConstantSDRAM int64 `toml:"constant_sdram"`
	DTCM          int64 `toml:"dtcm"`
	CPUCycles     int64 `toml:"cpu_cycles"`
}

type ComponentCost struct {
	ConstantSDRAM    int64            `toml:"constant_sdram"`
	SDRAMPerAtom     int64            `toml:"sdram_per_atom"`
	DTCMPerAtom      int64            `toml:"dtcm_per_atom"`
	CPUCyclesPerAtom int64            `toml:"cpu_cycles_per_atom"`
	ProvenanceItems  int              `toml:"provenance_items"`
	Recordables      []RecordableCost `toml:"recordables"`
}

type RecordableCost struct {
	Name         string `toml:"name"`
	BytesPerAtom int64  `toml:"bytes_per_atom"`
	Bitfield     bool   `toml:"bitfield"`
}

// Default describes a 48 chip board running at 1 ms timesteps.
func Default() *Config {
	return &Config{
		Machine: Machine{
			Chips:            48,
			CoresPerChip:     16,
			SDRAMPerChip:     117 * 1024 * 1024,
			DTCMPerCore:      64 * 1024,
			CPUCyclesPerCore: 200000,
		},
		Simulation: Simulation{
			TimestepUS:        1000,
			PlannedTimesteps:  1000,
			MaxAtomsPerCore:   256,
			MaxDelayTimesteps: 16,
			Seed:              1,
			Workers:           4,
			WeightScales:      []float64{1},
		},
		Resources: Resources{
			Common: CommonCost{ConstantSDRAM: 4096, DTCM: 1024, CPUCycles: 4000},
			State: ComponentCost{
				ConstantSDRAM:    2048,
				SDRAMPerAtom:     64,
				DTCMPerAtom:      64,
				CPUCyclesPerAtom: 180,
				ProvenanceItems:  5,
				Recordables: []RecordableCost{
					{Name: "spikes", Bitfield: true},
					{Name: "v", BytesPerAtom: 4},
					{Name: "gsyn_exc", BytesPerAtom: 4},
					{Name: "gsyn_inh", BytesPerAtom: 4},
				},
			},
			Connectivity: ComponentCost{
				ConstantSDRAM:    1024,
				SDRAMPerAtom:     16,
				DTCMPerAtom:      8,
				CPUCyclesPerAtom: 120,
				ProvenanceItems:  8,
			},
		},
	}
}

// Parse reads a TOML document on top of the defaults. Keys the document sets
// replace the default, everything else keeps it. Unknown keys are rejected.
func Parse(data string) (*Config, error) {
	var scratch Config
	md, err := toml.Decode(data, &scratch)
	if nil != err {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); 0 < len(undecoded) {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, failure.Configuration("config", "unknown keys %s", strings.Join(keys, ", "))
	}

	// decoding reuses slice elements, so arrays the document sets must not
	// start from the defaults
	cfg := Default()
	if md.IsDefined("simulation", "weight_scales") {
		cfg.Simulation.WeightScales = nil
	}
	if md.IsDefined("resources", "state", "recordables") {
		cfg.Resources.State.Recordables = nil
	}
	if md.IsDefined("resources", "connectivity", "recordables") {
		cfg.Resources.Connectivity.Recordables = nil
	}
	if _, err := toml.Decode(data, cfg); nil != err {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := cfg.Validate(); nil != err {
		return nil, err
	}
	return cfg, nil
}

// Load parses the neurosplit.toml file of the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FILE_NAME)
	data, err := os.ReadFile(path)
	if nil != err {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg, err := Parse(string(data))
	if nil != err {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Dir, err = filepath.Abs(dir)
	if nil != err {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return cfg, nil
}

// FindAndLoad walks up from startDir to find a neurosplit.toml file. Returns
// nil if there is none.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if nil != err {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FILE_NAME)
		if _, err := os.Stat(path); nil == err {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) Validate() error {
	m := c.Machine
	if m.Chips < 1 || m.CoresPerChip < 1 {
		return failure.Configuration("config machine", "needs at least one chip with one core, got %d x %d", m.Chips, m.CoresPerChip)
	}
	if m.SDRAMPerChip < 1 || m.DTCMPerCore < 1 || m.CPUCyclesPerCore < 1 {
		return failure.Configuration("config machine", "ceilings must be positive")
	}
	s := c.Simulation
	if s.TimestepUS < 1 {
		return failure.Configuration("config simulation", "timestep_us must be at least 1, got %d", s.TimestepUS)
	}
	if s.PlannedTimesteps < 0 || s.MaxDelayTimesteps < 0 || s.Workers < 0 {
		return failure.Configuration("config simulation", "planned_timesteps, max_delay_timesteps and workers must not be negative")
	}
	if s.MaxAtomsPerCore < 1 {
		return failure.Configuration("config simulation", "max_atoms_per_core must be at least 1, got %d", s.MaxAtomsPerCore)
	}
	if 0 == len(s.WeightScales) {
		return failure.Configuration("config simulation", "needs a weight scale per synapse type")
	}
	for i, scale := range s.WeightScales {
		if scale <= 0 {
			return failure.Configuration("config simulation", "weight scale %d must be positive, got %g", i, scale)
		}
	}
	if err := c.Resources.State.validate("state"); nil != err {
		return err
	}
	return c.Resources.Connectivity.validate("connectivity")
}

func (cc ComponentCost) validate(name string) error {
	if cc.ConstantSDRAM < 0 || cc.SDRAMPerAtom < 0 || cc.DTCMPerAtom < 0 || cc.CPUCyclesPerAtom < 0 || cc.ProvenanceItems < 0 {
		return failure.Configuration("config resources."+name, "costs must not be negative")
	}
	seen := make(map[string]bool)
	for _, r := range cc.Recordables {
		if "" == r.Name || seen[r.Name] {
			return failure.Configuration("config resources."+name, "recordable names must be unique and not empty, got %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

func (c *Config) Ceilings() resources.Ceilings {
	return resources.Ceilings{
		Chips:            c.Machine.Chips,
		CoresPerChip:     c.Machine.CoresPerChip,
		SDRAMPerChip:     c.Machine.SDRAMPerChip,
		DTCMPerCore:      c.Machine.DTCMPerCore,
		CPUCyclesPerCore: c.Machine.CPUCyclesPerCore,
	}
}

func (c *Config) Profile() resources.Profile {
	return resources.Profile{
		Common: resources.CommonProfile{
			ConstantSDRAM: c.Resources.Common.ConstantSDRAM,
			DTCM:          c.Resources.Common.DTCM,
			CPUCycles:     c.Resources.Common.CPUCycles,
		},
		State:        c.Resources.State.profile(),
		Connectivity: c.Resources.Connectivity.profile(),
	}
}

func (cc ComponentCost) profile() resources.ComponentProfile {
	p := resources.ComponentProfile{
		ConstantSDRAM:    cc.ConstantSDRAM,
		SDRAMPerAtom:     cc.SDRAMPerAtom,
		DTCMPerAtom:      cc.DTCMPerAtom,
		CPUCyclesPerAtom: cc.CPUCyclesPerAtom,
		ProvenanceItems:  cc.ProvenanceItems,
	}
	for _, r := range cc.Recordables {
		p.Recordables = append(p.Recordables, resources.Recordable{Name: r.Name, BytesPerAtom: r.BytesPerAtom, Bitfield: r.Bitfield})
	}
	return p
}

// MaxSupportedDelay is the longest delay in ms the target can apply.
func (c *Config) MaxSupportedDelay() float64 {
	return float64(c.Simulation.MaxDelayTimesteps) * float64(c.Simulation.TimestepUS) / 1000
}
