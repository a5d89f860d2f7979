package connector

import (
	"slices"

	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

const MAPPING_PARAM_BYTES = 8

// Mapping wires a population whose atom ids are packed as
// [column | row (HeightBits) | channel (ChannelBits) | event (EventBits)]
// to a post population numbered row major (row * Width + column). Only the
// configured channel is connected.
type Mapping struct {
	Synapses
	Width       int
	Height      int
	Channel     int
	HeightBits  int
	ChannelBits int
	EventBits   int

	rowMask   uint32
	colMask   uint32
	channel   uint32
	chanShift int
	rowShift  int
	colShift  int
}

func NewMapping(synapses Synapses, width, height, channel, heightBits, channelBits, eventBits int) (*Mapping, error) {
	if width < 1 || height < 1 {
		return nil, failure.Configuration("MappingConnector", "width and height must be at least 1, got %dx%d", width, height)
	}
	if heightBits < 0 || channelBits < 0 || eventBits < 0 || heightBits+channelBits+eventBits >= 32 {
		return nil, failure.Configuration("MappingConnector", "bit widths %d/%d/%d do not leave room for a column", heightBits, channelBits, eventBits)
	}
	if height > 1<<heightBits {
		return nil, failure.Configuration("MappingConnector", "height %d does not fit %d row bits", height, heightBits)
	}
	colBits := 32 - (heightBits + channelBits + eventBits)
	if int64(width) > int64(1)<<colBits {
		return nil, failure.Configuration("MappingConnector", "width %d does not fit %d column bits", width, colBits)
	}
	m := &Mapping{
		Synapses:    synapses,
		Width:       width,
		Height:      height,
		Channel:     channel,
		HeightBits:  heightBits,
		ChannelBits: channelBits,
		EventBits:   eventBits,
		rowMask:     uint32(1)<<heightBits - 1,
		chanShift:   eventBits,
		rowShift:    channelBits + eventBits,
	}
	m.colShift = heightBits + m.rowShift
	m.colMask = uint32(1<<colBits - 1)
	m.channel = uint32(channel) & (uint32(1)<<channelBits - 1)
	return m, nil
}

func (m *Mapping) Name() string {
	return "MappingConnector"
}

func (m *Mapping) Bind(projection Projection) Connector {
	bound := *m
	bound.Stream = uint64(projection.ID)
	return &bound
}

// Encode returns the pre atom id of (row, col) on the configured channel.
func (m *Mapping) Encode(row, col int) uint32 {
	r := uint32(row) & m.rowMask
	c := uint32(col) & m.colMask
	return c<<m.colShift + r<<m.rowShift + m.channel<<m.chanShift
}

func (m *Mapping) Decode(id uint32) (row int, col int, channel int) {
	row = int(id >> m.rowShift & m.rowMask)
	col = int(id >> m.colShift & m.colMask)
	channel = int(id >> m.chanShift & (uint32(1)<<m.ChannelBits - 1))
	return row, col, channel
}

// PostIndex is the row major post atom a pre id is wired to.
func (m *Mapping) PostIndex(id uint32) int {
	row, col, _ := m.Decode(id)
	return row*m.Width + col
}

// preRows returns the smallest and largest row field of the ids in pre.
// A slice spanning a full row cycle or wrapping past the row mask contains
// both row 0 and the last row.
func (m *Mapping) preRows(pre slicing.Slice) (int, int) {
	lo := uint32(pre.LoAtom) >> m.rowShift
	hi := uint32(pre.HiAtom) >> m.rowShift
	if hi-lo > m.rowMask {
		return 0, int(m.rowMask)
	}
	loRow, hiRow := lo&m.rowMask, hi&m.rowMask
	if loRow > hiRow {
		return 0, int(m.rowMask)
	}
	return int(loRow), int(hiRow)
}

func (m *Mapping) postRows(post slicing.Slice) (int, int) {
	return post.LoAtom / m.Width, post.HiAtom / m.Width
}

// band is the row range shared by both slices.
func (m *Mapping) band(pre, post slicing.Slice) (int, int, bool) {
	preMin, preMax := m.preRows(pre)
	postMin, postMax := m.postRows(post)
	if preMin > postMax || preMax < postMin {
		return 0, 0, false
	}
	return max(preMin, postMin), min(preMax, postMax), true
}

// span is the range of post atoms the band can reach inside post.
func (m *Mapping) span(post slicing.Slice, minRow, maxRow int) (slicing.Slice, bool) {
	return post.Overlap(slicing.New(minRow*m.Width, maxRow*m.Width+m.Width-1))
}

func (m *Mapping) HasConnections(pre, post slicing.Slice) bool {
	_, _, ok := m.band(pre, post)
	return ok
}

func (m *Mapping) MaxConnectionsFromPre(pre, post slicing.Slice, delays *DelayRange) (int, error) {
	if err := delays.validate(m.Name(), m.MaxSupportedDelay); nil != err {
		return 0, err
	}
	minRow, maxRow, ok := m.band(pre, post)
	if !ok {
		return 0, nil
	}
	span, ok := m.span(post, minRow, maxRow)
	if !ok {
		return 0, nil
	}
	n := min(pre.NAtoms(), span.NAtoms(), (maxRow-minRow+1)*m.Width)
	return m.countInDelayRange(n, span, delays), nil
}

// MaxConnectionsToPost is at most one: every post atom has exactly one
// (row, col) on the configured channel.
func (m *Mapping) MaxConnectionsToPost(pre, post slicing.Slice) int {
	if m.HasConnections(pre, post) {
		return 1
	}
	return 0
}

func (m *Mapping) MaxWeight(pre, post slicing.Slice) float64 {
	minRow, maxRow, ok := m.band(pre, post)
	if !ok {
		return 0
	}
	span, ok := m.span(post, minRow, maxRow)
	if !ok {
		return 0
	}
	return m.maxWeight(span)
}

func (m *Mapping) MaxDelay(pre, post slicing.Slice) float64 {
	minRow, maxRow, ok := m.band(pre, post)
	if !ok {
		return 0
	}
	span, ok := m.span(post, minRow, maxRow)
	if !ok {
		return 0
	}
	return m.maxDelay(span)
}

// preIndices returns the sorted pre ids of the band that lie in pre and
// reach an atom of post.
func (m *Mapping) preIndices(pre, post slicing.Slice, minRow, maxRow int) []uint32 {
	ids := make([]uint32, 0, (maxRow-minRow+1)*m.Width)
	for row := minRow; row <= maxRow; row++ {
		for col := 0; col < m.Width; col++ {
			id := m.Encode(row, col)
			if pre.Contains(int(id)) && post.Contains(m.PostIndex(id)) {
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

func (m *Mapping) Generate(pre, post slicing.Slice, synapseType uint8) (Table, error) {
	minRow, maxRow, ok := m.band(pre, post)
	if !ok {
		return Table{}, nil
	}
	ids := m.preIndices(pre, post, minRow, maxRow)
	table := make(Table, len(ids))
	indices := make([]int, len(ids))
	for i, id := range ids {
		target := m.PostIndex(id)
		table[i].Source = id
		table[i].Target = uint32(target)
		indices[i] = target
	}
	if err := m.fill(m.Name(), table, indices, synapseType, m.rng(pre, post)); nil != err {
		return nil, err
	}
	return table, nil
}

func (m *Mapping) ConnectorID() uint32 {
	return MAPPING
}

func (m *Mapping) ParamBlockSize() int {
	return MAPPING_PARAM_BYTES
}

func (m *Mapping) GeneratesOnMachine() bool {
	return m.onMachine()
}

// ParamBlock packs the geometry as
// word 0: width << 16 | height
// word 1: height bits << 24 | channel bits << 16 | event bits << 8 | channel
func (m *Mapping) ParamBlock(pre, post slicing.Slice) ([]uint32, error) {
	if m.Width > 0xFFFF || m.Height > 0xFFFF {
		return nil, failure.Configuration(m.Name(), "geometry %dx%d does not fit the 16 bit parameter fields", m.Width, m.Height)
	}
	if m.channel > 0xFF {
		return nil, failure.Configuration(m.Name(), "channel %d does not fit the 8 bit parameter field", m.channel)
	}
	return []uint32{
		uint32(m.Width&0xFFFF)<<16 | uint32(m.Height&0xFFFF),
		m.channel&0xFF | uint32(m.EventBits&0xFF)<<8 | uint32(m.ChannelBits&0xFF)<<16 | uint32(m.HeightBits&0xFF)<<24,
	}, nil
}
