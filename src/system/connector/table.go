package connector

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// RECORD_BYTES is the packed size of one connection:
// uint32 source, uint32 target, float64 weight, float64 delay, uint8 type
const RECORD_BYTES = 4 + 4 + 8 + 8 + 1

// Record is one connection. Source and Target are population atom indices.
type Record struct {
	Source      uint32
	Target      uint32
	Weight      float64
	Delay       float64
	SynapseType uint8
}

// Table is the ordered connection set of one slice pair.
type Table []Record

func (t Table) SizeInBytes() int {
	return len(t) * RECORD_BYTES
}

// MarshalBinary packs the records little endian, in order, without a header.
func (t Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(t.SizeInBytes())
	for i := range t {
		if err := binary.Write(&buf, binary.LittleEndian, t[i]); nil != err {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func UnmarshalTable(data []byte) (Table, error) {
	if 0 != len(data)%RECORD_BYTES {
		return nil, fmt.Errorf("table of %d bytes is not a multiple of %d", len(data), RECORD_BYTES)
	}
	table := make(Table, len(data)/RECORD_BYTES)
	reader := bytes.NewReader(data)
	for i := range table {
		if err := binary.Read(reader, binary.LittleEndian, &table[i]); nil != err {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
	}
	return table, nil
}
