package memory

import (
	"strconv"

	"github.com/voodooEntity/gits/src/transport"
)

// CONTEXT is the gits context every registry entity is mapped under.
const CONTEXT = "Compiler"

// Record is a builder for the entity trees the registry maps into gits.
type Record struct {
	Type       string
	Value      string
	Properties map[string]string
	Children   []*Record
}

func NewRecord(entityType string, value string) *Record {
	return &Record{
		Type:       entityType,
		Value:      value,
		Properties: make(map[string]string),
		Children:   make([]*Record, 0),
	}
}

func (r *Record) SetProperty(key string, value string) *Record {
	r.Properties[key] = value
	return r
}

func (r *Record) SetInt(key string, value int64) *Record {
	r.Properties[key] = strconv.FormatInt(value, 10)
	return r
}

func (r *Record) SetBool(key string, value bool) *Record {
	r.Properties[key] = strconv.FormatBool(value)
	return r
}

func (r *Record) AddChild(child *Record) *Record {
	r.Children = append(r.Children, child)
	return r
}

// Transform turns the record tree into a transport entity that always
// creates new entities when mapped.
func (r *Record) Transform() transport.TransportEntity {
	entity := transport.TransportEntity{
		ID:             -1,
		Type:           r.Type,
		Value:          r.Value,
		Context:        CONTEXT,
		Properties:     make(map[string]string, len(r.Properties)),
		ChildRelations: make([]transport.TransportRelation, 0, len(r.Children)),
	}
	for key, value := range r.Properties {
		entity.Properties[key] = value
	}
	for _, child := range r.Children {
		entity.ChildRelations = append(entity.ChildRelations, transport.TransportRelation{
			Target: child.Transform(),
		})
	}
	return entity
}

func intProperty(properties map[string]string, key string) int {
	return int(int64Property(properties, key))
}

func int64Property(properties map[string]string, key string) int64 {
	v, err := strconv.ParseInt(properties[key], 10, 64)
	if nil != err {
		return 0
	}
	return v
}
