package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/resources"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); nil != err {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.MaxSupportedDelay() != 16 {
		t.Fatalf("expected 16 ms max delay at 1 ms timesteps, got %g", cfg.MaxSupportedDelay())
	}
	if !cfg.Profile().IsRecordable(resources.KIND_STATE, "spikes") {
		t.Fatalf("expected spikes to be a state recordable")
	}
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse(`
[machine]
chips = 2
sdram_per_chip = 1048576

[simulation]
timestep_us = 100
weight_scales = [2048.0, 1024.0]

[[resources.state.recordables]]
name = "v"
bytes_per_atom = 4
`)
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if cfg.Machine.Chips != 2 || cfg.Machine.CoresPerChip != 16 || cfg.Machine.SDRAMPerChip != 1048576 {
		t.Fatalf("unexpected machine %+v", cfg.Machine)
	}
	if cfg.MaxSupportedDelay() != 1.6 {
		t.Fatalf("expected 1.6 ms max delay, got %g", cfg.MaxSupportedDelay())
	}
	if len(cfg.Simulation.WeightScales) != 2 || cfg.Simulation.WeightScales[1] != 1024 {
		t.Fatalf("unexpected weight scales %v", cfg.Simulation.WeightScales)
	}
	recordables := cfg.Resources.State.Recordables
	if len(recordables) != 1 || recordables[0].Name != "v" || recordables[0].Bitfield {
		t.Fatalf("expected the document's recordables to replace the defaults, got %+v", recordables)
	}
	if cfg.Ceilings().Chips != 2 || cfg.Profile().State.SDRAMPerAtom != 64 {
		t.Fatalf("expected converted ceilings and profile to follow the config")
	}
}

func TestParse_RejectsUnknownKeysAndBadValues(t *testing.T) {
	var confErr *failure.ConfigurationError
	if _, err := Parse("[machine]\nchipz = 3\n"); !errors.As(err, &confErr) {
		t.Fatalf("expected configuration error for an unknown key, got %v", err)
	}
	cases := []string{
		"[machine]\nchips = 0\n",
		"[simulation]\ntimestep_us = 0\n",
		"[simulation]\nmax_atoms_per_core = 0\n",
		"[simulation]\nweight_scales = []\n",
		"[simulation]\nweight_scales = [-1.0]\n",
		"[[resources.connectivity.recordables]]\nname = \"a\"\n[[resources.connectivity.recordables]]\nname = \"a\"\n",
	}
	for _, doc := range cases {
		if _, err := Parse(doc); !errors.As(err, &confErr) {
			t.Fatalf("expected configuration error for %q, got %v", doc, err)
		}
	}
	if _, err := Parse("[machine"); nil == err {
		t.Fatalf("expected syntax error")
	}
}

func TestFindAndLoad_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, FILE_NAME), []byte("[simulation]\nseed = 7\n"), 0o644); nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	cfg, err := FindAndLoad(nested)
	if nil != err || nil == cfg {
		t.Fatalf("expected config to be found, got %v", err)
	}
	if cfg.Simulation.Seed != 7 || cfg.Dir != root {
		t.Fatalf("unexpected config seed %d dir %s", cfg.Simulation.Seed, cfg.Dir)
	}

	if _, err := Load(nested); nil == err {
		t.Fatalf("expected error loading a directory without %s", FILE_NAME)
	}
}
