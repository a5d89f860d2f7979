package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/neurosplit"
	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/config"
	"github.com/voodooEntity/neurosplit/src/system/connector"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/memory"
	"github.com/voodooEntity/neurosplit/src/system/observer"
	"github.com/voodooEntity/neurosplit/src/system/plasticity"
	"github.com/voodooEntity/neurosplit/src/system/report"
)

func main() {
	//logger := log.New(io.Discard, "", 0)
	logger := log.New(os.Stdout, "", 0)

	// a neurosplit.toml in the working directory or above
	// overrides the defaults
	cwd, _ := os.Getwd()
	cfg, err := config.FindAndLoad(cwd)
	if nil != err {
		logger.Fatal(err)
	}

	// create base instance. ident is required.
	// Config nil falls back to config.Default()
	ns, err := neurosplit.New(neurosplit.Settings{
		Ident:    "GreatName",
		LogLevel: archivist.LEVEL_INFO,
		Logger:   logger,
		Config:   cfg,
	})
	if nil != err {
		logger.Fatal(err)
	}

	// a 32x32 retina with two channels feeding a plastic layer
	if _, err := ns.AddPopulation("retina", 32*32*2, "spikes"); nil != err {
		logger.Fatal(err)
	}
	if _, err := ns.AddPopulation("layer", 32*32, "spikes", "v"); nil != err {
		logger.Fatal(err)
	}
	mapping, err := connector.NewMapping(ns.Synapses(connector.Uniform{Low: 0.1, High: 0.5}, connector.Constant(1)), 32, 32, 0, 5, 1, 0)
	if nil != err {
		logger.Fatal(err)
	}
	_, err = ns.AddProjection(neurosplit.ProjectionSettings{
		Pre:       "retina",
		Post:      "layer",
		Connector: mapping,
		Dynamics:  &plasticity.STDP{Timing: plasticity.NewSpikePair(), Weight: plasticity.NewMultiplicative()},
	})
	if nil != err {
		logger.Fatal(err)
	}

	// get an observer instance. provide a callback
	// to be executed once the compile is done
	obsi := ns.GetObserverInstance(func(mi *memory.Memory) {
		qry := query.New().Read(memory.TYPE_RULE).To(query.New().Read(memory.TYPE_PROVENANCE))
		ret := mi.Gits.Query().Execute(qry)
		logger.Println("Provenance:", ret.Amount, "rules")
	})

	// register a tick function, runs after every phase
	fn := func(phase observer.Phase, mi *memory.Memory, logger *archivist.Archivist) {
		logger.InfoF("%s: %d items in %s", phase.Name, phase.Items, phase.Took)
	}
	obsi.RegisterTickFunction(&fn)

	res, err := ns.Compile(context.Background())
	if nil != err {
		logger.Fatal(err)
	}

	for _, unit := range ns.UnitsOf("layer", graph.ROLE_STATE) {
		logger.Println(fmt.Sprintf("%s on chip %d core %d", unit.Label, unit.Chip, unit.Core))
	}

	data, err := report.Encode(res.Manifest())
	if nil != err {
		logger.Fatal(err)
	}
	logger.Println(fmt.Sprintf("manifest of %d bytes, %d edges kept, %d pruned", len(data), res.Retained, res.Pruned))
}
