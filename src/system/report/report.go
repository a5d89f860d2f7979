// Package report exports the outputs of a compile as one manifest, encoded
// as canonical CBOR so identical compiles give identical bytes.
package report

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/voodooEntity/neurosplit/src/system/expander"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/memory"
)

const VERSION = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if nil != err {
		panic(fmt.Sprintf("report: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

type Manifest struct {
	Version    int          `cbor:"1,keyasint"`
	Units      []Unit       `cbor:"2,keyasint"`
	Partitions []Partition  `cbor:"3,keyasint,omitempty"`
	Edges      []Edge       `cbor:"4,keyasint,omitempty"`
	Tables     []Table      `cbor:"5,keyasint,omitempty"`
	Rules      []Rule       `cbor:"6,keyasint,omitempty"`
	Provenance []Provenance `cbor:"7,keyasint,omitempty"`
}

type Unit struct {
	ID              int          `cbor:"1,keyasint"`
	Label           string       `cbor:"2,keyasint"`
	Role            string       `cbor:"3,keyasint"`
	Population      int          `cbor:"4,keyasint"`
	LoAtom          int          `cbor:"5,keyasint"`
	HiAtom          int          `cbor:"6,keyasint"`
	ConstantSDRAM   int64        `cbor:"7,keyasint"`
	VariableSDRAM   int64        `cbor:"8,keyasint"`
	DTCM            int64        `cbor:"9,keyasint"`
	CPUCycles       int64        `cbor:"10,keyasint"`
	RecordedRegions []int        `cbor:"11,keyasint,omitempty"`
	Constraints     []Constraint `cbor:"12,keyasint,omitempty"`
}

type Constraint struct {
	Kind string `cbor:"1,keyasint"`
	Chip int    `cbor:"2,keyasint"`
	Core int    `cbor:"3,keyasint"`
	Key  uint32 `cbor:"4,keyasint,omitempty"`
}

type Partition struct {
	Pre         int          `cbor:"1,keyasint"`
	Identifier  string       `cbor:"2,keyasint"`
	Edges       []int        `cbor:"3,keyasint"`
	Constraints []Constraint `cbor:"4,keyasint,omitempty"`
}

type Edge struct {
	ID         int    `cbor:"1,keyasint"`
	Label      string `cbor:"2,keyasint"`
	Pre        int    `cbor:"3,keyasint"`
	Post       int    `cbor:"4,keyasint"`
	Projection int    `cbor:"5,keyasint"`
	Kind       string `cbor:"6,keyasint"`
}

// Table describes the connection data of one edge. Only the digest of a
// materialized table is kept, the bytes go to the loader.
type Table struct {
	Edge           int      `cbor:"1,keyasint"`
	MaxConnections int      `cbor:"2,keyasint"`
	Records        int      `cbor:"3,keyasint"`
	Bytes          int      `cbor:"4,keyasint"`
	Digest         [32]byte `cbor:"5,keyasint"`
	OnMachine      bool     `cbor:"6,keyasint,omitempty"`
	ConnectorID    uint32   `cbor:"7,keyasint,omitempty"`
	ParamBlock     []uint32 `cbor:"8,keyasint,omitempty"`
}

// Rule is a generated plasticity parameter block and the projections sharing
// it.
type Rule struct {
	Name             string `cbor:"1,keyasint"`
	ExecutableSuffix string `cbor:"2,keyasint"`
	Projections      []int  `cbor:"3,keyasint"`
	Data             []byte `cbor:"4,keyasint"`
}

type Provenance struct {
	Group   string `cbor:"1,keyasint"`
	Name    string `cbor:"2,keyasint"`
	Value   int64  `cbor:"3,keyasint"`
	Report  bool   `cbor:"4,keyasint,omitempty"`
	Message string `cbor:"5,keyasint,omitempty"`
}

// New collects the units, partitions and edges of mg in graph order and the
// tables in the order given.
func New(mg *graph.MachineGraph, generated []expander.Generated) *Manifest {
	m := &Manifest{Version: VERSION}
	for _, v := range mg.Vertices() {
		m.Units = append(m.Units, Unit{
			ID:              v.ID,
			Label:           v.Label,
			Role:            string(v.Role),
			Population:      v.Population,
			LoAtom:          v.Slice.LoAtom,
			HiAtom:          v.Slice.HiAtom,
			ConstantSDRAM:   v.Resources.ConstantSDRAM,
			VariableSDRAM:   v.Resources.VariableSDRAM,
			DTCM:            v.Resources.DTCM,
			CPUCycles:       v.Resources.CPUCycles,
			RecordedRegions: v.RecordedRegions,
			Constraints:     constraints(v.Constraints),
		})
	}
	for _, p := range mg.Partitions() {
		m.Partitions = append(m.Partitions, Partition{
			Pre:         p.Pre,
			Identifier:  p.Identifier,
			Edges:       p.Edges,
			Constraints: constraints(p.Constraints),
		})
	}
	for _, e := range mg.Edges() {
		m.Edges = append(m.Edges, Edge{ID: e.ID, Label: e.Label, Pre: e.Pre, Post: e.Post, Projection: e.Projection, Kind: e.Kind.String()})
	}
	for _, g := range generated {
		m.Tables = append(m.Tables, Table{
			Edge:           g.Edge,
			MaxConnections: g.MaxConnections,
			Records:        len(g.Table),
			Bytes:          len(g.Data),
			Digest:         sha256.Sum256(g.Data),
			OnMachine:      g.OnMachine,
			ConnectorID:    g.ConnectorID,
			ParamBlock:     g.ParamBlock,
		})
	}
	return m
}

func constraints(cs []graph.Constraint) []Constraint {
	var ret []Constraint
	for _, c := range cs {
		ret = append(ret, Constraint{Kind: string(c.Kind), Chip: c.Chip, Core: c.Core, Key: c.Key})
	}
	return ret
}

// AddProvenance appends registry records in the order given.
func (m *Manifest) AddProvenance(records []memory.ProvenanceRecord) {
	for _, r := range records {
		m.Provenance = append(m.Provenance, Provenance{Group: r.Group, Name: r.Name, Value: r.Value, Report: r.Report, Message: r.Message})
	}
}

// Encode serializes the manifest to canonical CBOR bytes.
func Encode(m *Manifest) ([]byte, error) {
	return encMode.Marshal(m)
}

// Decode deserializes a manifest from CBOR bytes.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := cbor.Unmarshal(data, &m); nil != err {
		return nil, fmt.Errorf("report: unmarshal manifest: %w", err)
	}
	if VERSION != m.Version {
		return nil, fmt.Errorf("report: unsupported manifest version %d", m.Version)
	}
	return &m, nil
}

// Digest is the sha256 of the encoded manifest.
func (m *Manifest) Digest() ([32]byte, error) {
	data, err := Encode(m)
	if nil != err {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
