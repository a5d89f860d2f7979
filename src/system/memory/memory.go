// Package memory keeps the relations of a compile pass in a gits instance:
// which units a population was split into and which provenance items a
// plasticity rule produced. The graphs stay the source of truth, the
// registry answers the lookups callers make after a compile.
package memory

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/voodooEntity/gits"
	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/gits/src/transport"
	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

const (
	TYPE_POPULATION = "Population"
	TYPE_UNIT       = "Unit"
	TYPE_RULE       = "Rule"
	TYPE_PROVENANCE = "Provenance"
)

// Memory wraps the gits instance of one compiler. Lookups that create on
// miss are serialized so concurrent partitioning never maps a population
// twice.
type Memory struct {
	Gits *gits.Gits
	log  *archivist.Archivist
	mu   sync.Mutex
}

// UnitRecord is a unit as the registry stores it.
type UnitRecord struct {
	ID       int
	Label    string
	Role     graph.Role
	Slice    slicing.Slice
	VertexID int
	Chip     int
	Core     int
}

// ProvenanceRecord is one diagnostic value grouped under the rule instance
// that produced it.
type ProvenanceRecord struct {
	Group   string
	Name    string
	Value   int64
	Report  bool
	Message string
}

// New creates a fresh gits instance under the given name.
func New(name string, logger *archivist.Archivist) *Memory {
	if nil == logger {
		logger = archivist.Discard()
	}
	return &Memory{
		Gits: gits.NewInstance(name),
		log:  logger,
	}
}

// RegisterPopulation returns the registry ID of the population, mapping it
// on first use.
func (m *Memory) RegisterPopulation(label string, nAtoms int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensure(NewRecord(TYPE_POPULATION, label).SetInt("NAtoms", int64(nAtoms)))
}

func (m *Memory) ensure(r *Record) int {
	if id := m.lookup(r.Type, r.Value); 0 != id {
		return id
	}
	m.Gits.MapData(r.Transform())
	id := m.lookup(r.Type, r.Value)
	m.log.DebugF(archivist.DEBUG_LEVEL_DETAIL, "mapped %s %q as %d", r.Type, r.Value, id)
	return id
}

func (m *Memory) lookup(entityType string, value string) int {
	result := m.Gits.Query().Execute(query.New().Read(entityType).Match("Value", "==", value))
	if 0 == result.Amount {
		return 0
	}
	return result.Entities[0].ID
}

// RegisterUnits links the units to the population, which must have been
// registered before.
func (m *Memory) RegisterUnits(population string, units []UnitRecord) {
	if 0 == len(units) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	popID := m.lookup(TYPE_POPULATION, population)
	if 0 == popID {
		m.log.WarningF("population %s is not registered, dropping %d units", population, len(units))
		return
	}
	parent := transport.TransportEntity{
		ID:             popID,
		Type:           TYPE_POPULATION,
		Value:          population,
		Context:        CONTEXT,
		Properties:     map[string]string{},
		ChildRelations: make([]transport.TransportRelation, 0, len(units)),
	}
	for _, u := range units {
		unit := NewRecord(TYPE_UNIT, u.Label).
			SetProperty("Role", string(u.Role)).
			SetInt("LoAtom", int64(u.Slice.LoAtom)).
			SetInt("HiAtom", int64(u.Slice.HiAtom)).
			SetInt("VertexID", int64(u.VertexID)).
			SetInt("Chip", int64(u.Chip)).
			SetInt("Core", int64(u.Core))
		parent.ChildRelations = append(parent.ChildRelations, transport.TransportRelation{Target: unit.Transform()})
	}
	m.Gits.MapData(parent)
	m.log.DebugF(archivist.DEBUG_LEVEL_INFO, "registered %d units for %s", len(units), population)
}

// UnitsOf returns the units of a population with the given role ordered by
// slice. An empty role returns every unit.
func (m *Memory) UnitsOf(population string, role graph.Role) []UnitRecord {
	qry := query.New().Read(TYPE_POPULATION).Match("Value", "==", population).To(
		query.New().Read(TYPE_UNIT),
	)
	result := m.Gits.Query().Execute(qry)
	var units []UnitRecord
	for _, pop := range result.Entities {
		for _, child := range pop.Children() {
			u := unitFromEntity(child)
			if "" == role || u.Role == role {
				units = append(units, u)
			}
		}
	}
	slices.SortFunc(units, func(a, b UnitRecord) int {
		if a.Slice.LoAtom != b.Slice.LoAtom {
			return a.Slice.LoAtom - b.Slice.LoAtom
		}
		return strings.Compare(string(a.Role), string(b.Role))
	})
	return units
}

func unitFromEntity(e transport.TransportEntity) UnitRecord {
	return UnitRecord{
		ID:       e.ID,
		Label:    e.Value,
		Role:     graph.Role(e.Properties["Role"]),
		Slice:    slicing.New(intProperty(e.Properties, "LoAtom"), intProperty(e.Properties, "HiAtom")),
		VertexID: intProperty(e.Properties, "VertexID"),
		Chip:     intProperty(e.Properties, "Chip"),
		Core:     intProperty(e.Properties, "Core"),
	}
}

// ForgetUnits deletes every unit of the population together with its
// relation to the population.
func (m *Memory) ForgetUnits(population string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	popID := m.lookup(TYPE_POPULATION, population)
	if 0 == popID {
		return 0
	}
	units := m.UnitsOf(population, "")
	for _, u := range units {
		m.Gits.Query().Execute(query.New().Delete(TYPE_UNIT).Match("ID", "==", strconv.Itoa(u.ID)))
	}
	m.log.DebugF(archivist.DEBUG_LEVEL_INFO, "forgot %d units of %s", len(units), population)
	return len(units)
}

// RecordProvenance maps the records below one rule entity per group.
func (m *Memory) RecordProvenance(records []ProvenanceRecord) {
	if 0 == len(records) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var groups []string
	children := make(map[string][]transport.TransportRelation)
	for _, r := range records {
		if _, ok := children[r.Group]; !ok {
			groups = append(groups, r.Group)
		}
		item := NewRecord(TYPE_PROVENANCE, r.Name).
			SetInt("Value", r.Value).
			SetBool("Report", r.Report).
			SetProperty("Message", r.Message)
		children[r.Group] = append(children[r.Group], transport.TransportRelation{Target: item.Transform()})
	}

	for _, group := range groups {
		ruleID := m.ensure(NewRecord(TYPE_RULE, group))
		m.Gits.MapData(transport.TransportEntity{
			ID:             ruleID,
			Type:           TYPE_RULE,
			Value:          group,
			Context:        CONTEXT,
			Properties:     map[string]string{},
			ChildRelations: children[group],
		})
	}
	m.log.DebugF(archivist.DEBUG_LEVEL_INFO, "recorded %d provenance items in %d groups", len(records), len(groups))
}

// ForgetProvenance deletes every item below its rule. The rule entities
// stay and are reused by the next RecordProvenance.
func (m *Memory) ForgetProvenance() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := m.Gits.Query().Execute(query.New().Read(TYPE_RULE).To(query.New().Read(TYPE_PROVENANCE)))
	n := 0
	for _, rule := range result.Entities {
		for _, child := range rule.Children() {
			m.Gits.Query().Execute(query.New().Delete(TYPE_PROVENANCE).Match("ID", "==", strconv.Itoa(child.ID)))
			n++
		}
	}
	return n
}

// Provenance returns every recorded item ordered by group and name.
func (m *Memory) Provenance() []ProvenanceRecord {
	qry := query.New().Read(TYPE_RULE).To(query.New().Read(TYPE_PROVENANCE))
	result := m.Gits.Query().Execute(qry)
	var records []ProvenanceRecord
	for _, rule := range result.Entities {
		for _, child := range rule.Children() {
			records = append(records, ProvenanceRecord{
				Group:   rule.Value,
				Name:    child.Value,
				Value:   int64Property(child.Properties, "Value"),
				Report:  "true" == child.Properties["Report"],
				Message: child.Properties["Message"],
			})
		}
	}
	slices.SortFunc(records, func(a, b ProvenanceRecord) int {
		if c := strings.Compare(a.Group, b.Group); 0 != c {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return records
}
