// Package neurosplit compiles a network of populations and projections into
// the per core units, edges and tables a neuromorphic machine runs.
package neurosplit

import (
	"context"
	"errors"
	"strings"

	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/config"
	"github.com/voodooEntity/neurosplit/src/system/connector"
	"github.com/voodooEntity/neurosplit/src/system/expander"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/filter"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/interfaces"
	"github.com/voodooEntity/neurosplit/src/system/memory"
	"github.com/voodooEntity/neurosplit/src/system/observer"
	"github.com/voodooEntity/neurosplit/src/system/plasticity"
	"github.com/voodooEntity/neurosplit/src/system/report"
	"github.com/voodooEntity/neurosplit/src/system/resources"
	"github.com/voodooEntity/neurosplit/src/system/splitter"
)

type Settings struct {
	// Ident names the registry instance and is required
	Ident      string
	Logger     interfaces.LoggerInterface
	LogLevel   int
	DebugLevel int
	// Config defaults to config.Default()
	Config *config.Config
}

type Neurosplit struct {
	ident        string
	config       *config.Config
	log          *archivist.Archivist
	memory       *memory.Memory
	app          *graph.ApplicationGraph
	pool         *resources.Pool
	machineGraph *graph.MachineGraph
	splitters    map[int]*splitter.Splitter
	observer     *observer.Observer
	compiled     bool
}

// ProjectionSettings describes one projection between two registered
// populations.
type ProjectionSettings struct {
	Label       string
	Pre         string
	Post        string
	Connector   connector.Connector
	SynapseType uint8
	// Partition defaults to graph.SPIKE_PARTITION
	Partition         string
	Dynamics          *plasticity.STDP
	GenerateOnMachine bool
}

// RuleBlock is a generated plasticity block and the projections sharing it.
type RuleBlock struct {
	Dynamics    plasticity.STDP
	Projections []int
	Block       plasticity.Block
}

// Result is everything one compile pass produced.
type Result struct {
	Graph      *graph.MachineGraph
	Pruned     int
	Retained   int
	Tables     []expander.Generated
	Rules      []RuleBlock
	Provenance []memory.ProvenanceRecord
}

func New(settings Settings) (*Neurosplit, error) {
	if "" == settings.Ident {
		return nil, failure.Configuration("neurosplit", "an ident is required")
	}
	logger := archivist.New(&archivist.Config{
		Logger:     settings.Logger,
		LogLevel:   settings.LogLevel,
		DebugLevel: settings.DebugLevel,
	})

	cfg := settings.Config
	if nil == cfg {
		cfg = config.Default()
	}
	if err := cfg.Validate(); nil != err {
		return nil, err
	}

	ns := &Neurosplit{
		ident:     settings.Ident,
		config:    cfg,
		log:       logger,
		memory:    memory.New(settings.Ident, logger.Scoped("memory")),
		app:       graph.NewApplicationGraph(),
		splitters: make(map[int]*splitter.Splitter),
	}
	if err := ns.freshMachine(); nil != err {
		return nil, err
	}
	logger.InfoF("created compiler %s for %d chips x %d cores", settings.Ident, cfg.Machine.Chips, cfg.Machine.CoresPerChip)
	return ns, nil
}

func (ns *Neurosplit) freshMachine() error {
	pool, err := resources.NewPool(ns.config.Ceilings(), ns.config.Simulation.PlannedTimesteps)
	if nil != err {
		return err
	}
	ns.pool = pool
	ns.machineGraph = graph.NewMachineGraph()
	return nil
}

func (ns *Neurosplit) Config() *config.Config {
	return ns.config
}

func (ns *Neurosplit) Memory() *memory.Memory {
	return ns.memory
}

// GetObserverInstance returns the observer of this compiler, created on first
// use with the given callback.
func (ns *Neurosplit) GetObserverInstance(cb func(memoryInstance *memory.Memory)) *observer.Observer {
	if nil == ns.observer {
		ns.observer = observer.New(ns.memory, cb, ns.log.Scoped("observer"))
	}
	return ns.observer
}

// Synapses returns weight and delay rules seeded and bounded by the config.
func (ns *Neurosplit) Synapses(weights connector.ValueRule, delays connector.ValueRule) connector.Synapses {
	return connector.Synapses{
		Weights:           weights,
		Delays:            delays,
		Seed:              ns.config.Simulation.Seed,
		MaxSupportedDelay: ns.config.MaxSupportedDelay(),
	}
}

// AddPopulation adds a population costed with the configured profile.
// Every recording name must be a recordable of either unit role.
func (ns *Neurosplit) AddPopulation(label string, nAtoms int, recording ...string) (*graph.Population, error) {
	profile := ns.config.Profile()
	for _, name := range recording {
		if !profile.IsRecordable(resources.KIND_STATE, name) && !profile.IsRecordable(resources.KIND_CONNECTIVITY, name) {
			return nil, failure.Precondition("population "+label, "%q is not recordable", name)
		}
	}
	pop, err := ns.app.AddPopulation(&graph.Population{
		Label:           label,
		NAtoms:          nAtoms,
		MaxAtomsPerCore: ns.config.Simulation.MaxAtomsPerCore,
		Profile:         profile,
		Recording:       recording,
	})
	if nil != err {
		return nil, err
	}
	ns.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "added population %s with %d atoms", label, nAtoms)
	return pop, nil
}

// AddProjection binds the connector to the populations it joins and adds
// the projection.
func (ns *Neurosplit) AddProjection(settings ProjectionSettings) (*graph.Projection, error) {
	pre, post := ns.app.PopulationByLabel(settings.Pre), ns.app.PopulationByLabel(settings.Post)
	if nil == pre || nil == post {
		return nil, failure.Configuration("projection "+settings.Label, "unknown population %q -> %q", settings.Pre, settings.Post)
	}
	if int(settings.SynapseType) >= len(ns.config.Simulation.WeightScales) {
		return nil, failure.Configuration("projection "+settings.Label, "synapse type %d has no weight scale", settings.SynapseType)
	}
	proj, err := ns.app.AddProjection(&graph.Projection{
		Label:             settings.Label,
		Pre:               pre.ID,
		Post:              post.ID,
		Connector:         settings.Connector,
		SynapseType:       settings.SynapseType,
		Partition:         settings.Partition,
		Kind:              graph.EDGE_PROJECTION,
		Dynamics:          settings.Dynamics,
		GenerateOnMachine: settings.GenerateOnMachine,
	})
	if nil != err {
		return nil, err
	}
	// the projection id keeps projections sharing a seed apart
	if bindable, ok := proj.Connector.(connector.Bindable); ok {
		proj.Connector = bindable.Bind(connector.Projection{ID: proj.ID, NPre: pre.NAtoms, NPost: post.NAtoms, Self: pre.ID == post.ID})
	}
	return proj, nil
}

// Compile runs partitioning, edge expansion, edge filtering, table and
// plasticity generation. A failed compile leaves nothing reserved; a
// successful one must be Reset before compiling again.
func (ns *Neurosplit) Compile(ctx context.Context) (*Result, error) {
	if ns.compiled {
		return nil, failure.Precondition("neurosplit "+ns.ident, "already compiled, reset first")
	}
	if nil != ns.observer {
		ns.observer.Restart()
	}
	ns.log.InfoF("compiling %d populations and %d projections", len(ns.app.Populations()), len(ns.app.Projections()))

	result, err := ns.compile(ctx)
	if nil != err {
		ns.log.ErrorF("compile failed: %s", err.Error())
		return nil, errors.Join(err, ns.reset())
	}
	ns.compiled = true
	if nil != ns.observer {
		ns.observer.Endgame()
	}
	ns.log.InfoF("compiled %d units, %d edges (%d pruned), %d rule blocks", result.Graph.NVertices(), result.Retained, result.Pruned, len(result.Rules))
	return result, nil
}

func (ns *Neurosplit) compile(ctx context.Context) (*Result, error) {
	ns.begin("partition")
	for _, pop := range ns.app.Populations() {
		s, ok := ns.splitters[pop.ID]
		if !ok {
			var err error
			s, err = splitter.New(pop, ns.memory, ns.log)
			if nil != err {
				return nil, err
			}
			ns.splitters[pop.ID] = s
		}
		if err := s.CreateMachineVertices(ns.pool, ns.machineGraph); nil != err {
			return nil, err
		}
	}
	ns.end(ns.machineGraph.NVertices())

	ns.begin("expand")
	exp := expander.New(ns.log)
	added, err := exp.ExpandEdges(ns.app, ns.machineGraph, ns.splitters)
	if nil != err {
		return nil, err
	}
	ns.end(added)

	ns.begin("filter")
	filtered, err := filter.Filter(ns.app, ns.machineGraph, ns.log.Scoped("filter"))
	if nil != err {
		return nil, err
	}
	ns.end(filtered.Pruned)

	ns.begin("tables")
	tables, err := exp.GenerateTables(ctx, ns.app, filtered.Graph, ns.config.Simulation.Workers)
	if nil != err {
		return nil, err
	}
	ns.end(len(tables))

	ns.begin("plasticity")
	rules, records, err := ns.generateRules()
	if nil != err {
		return nil, err
	}
	ns.memory.RecordProvenance(records)
	ns.end(len(rules))

	return &Result{
		Graph:      filtered.Graph,
		Pruned:     filtered.Pruned,
		Retained:   filtered.Retained,
		Tables:     tables,
		Rules:      rules,
		Provenance: ns.memory.Provenance(),
	}, nil
}

// generateRules generates one block per distinct rule instance. Provenance
// is reported per projection since it names the populations involved.
func (ns *Neurosplit) generateRules() ([]RuleBlock, []memory.ProvenanceRecord, error) {
	var rules []RuleBlock
	var records []memory.ProvenanceRecord
	for _, proj := range ns.app.Projections() {
		if nil == proj.Dynamics {
			continue
		}
		idx := -1
		for i := range rules {
			if rules[i].Dynamics.IsSameAs(*proj.Dynamics) {
				idx = i
				break
			}
		}
		if -1 == idx {
			block, err := proj.Dynamics.Generate(ns.config.Simulation.TimestepUS, ns.config.Simulation.WeightScales)
			if nil != err {
				return nil, nil, err
			}
			rules = append(rules, RuleBlock{Dynamics: *proj.Dynamics, Block: block})
			idx = len(rules) - 1
			ns.log.DebugF(archivist.DEBUG_LEVEL_INFO, "generated %s block of %d bytes", proj.Dynamics.Name(), len(block.Data))
		}
		rules[idx].Projections = append(rules[idx].Projections, proj.ID)

		pre, post := ns.app.Population(proj.Pre), ns.app.Population(proj.Post)
		for _, item := range proj.Dynamics.Provenance(pre.Label, post.Label, rules[idx].Block) {
			if item.Report {
				ns.log.Warning(item.Message)
			}
			records = append(records, provenanceRecord(item))
		}
	}
	return rules, records, nil
}

func provenanceRecord(item plasticity.ProvenanceItem) memory.ProvenanceRecord {
	record := memory.ProvenanceRecord{Value: item.Value, Report: item.Report, Message: item.Message}
	if 0 < len(item.Names) {
		record.Group = item.Names[0]
		record.Name = strings.Join(item.Names[1:], "/")
	}
	return record
}

func (ns *Neurosplit) begin(phase string) {
	ns.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "phase %s", phase)
	if nil != ns.observer {
		ns.observer.Begin(phase)
	}
}

func (ns *Neurosplit) end(items int) {
	if nil != ns.observer {
		ns.observer.End(items)
	}
}

// Reset discards every unit, edge and provenance item of the last compile.
// Populations and projections are kept.
func (ns *Neurosplit) Reset() error {
	return ns.reset()
}

func (ns *Neurosplit) reset() error {
	for _, pop := range ns.app.Populations() {
		if s, ok := ns.splitters[pop.ID]; ok {
			s.Reset()
		}
	}
	for _, proj := range ns.app.Projections() {
		ns.app.ForgetMachineEdges(proj.ID)
	}
	ns.memory.ForgetProvenance()
	ns.compiled = false
	return ns.freshMachine()
}

// UnitsOf returns the registered units of a population, all roles if role
// is empty.
func (ns *Neurosplit) UnitsOf(population string, role graph.Role) []memory.UnitRecord {
	return ns.memory.UnitsOf(population, role)
}

func (ns *Neurosplit) Provenance() []memory.ProvenanceRecord {
	return ns.memory.Provenance()
}

// Manifest collects the result for export.
func (r *Result) Manifest() *report.Manifest {
	m := report.New(r.Graph, r.Tables)
	for _, rule := range r.Rules {
		m.Rules = append(m.Rules, report.Rule{
			Name:             rule.Dynamics.Name(),
			ExecutableSuffix: rule.Dynamics.ExecutableSuffix(),
			Projections:      rule.Projections,
			Data:             rule.Block.Data,
		})
	}
	m.AddProvenance(r.Provenance)
	return m
}
