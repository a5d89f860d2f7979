package plasticity

import (
	"bytes"
	"encoding/binary"
)

// Writer collects a little endian parameter block.
type Writer struct {
	buf bytes.Buffer
}

func (w *Writer) WriteInt32(v int32) {
	// writes to a bytes.Buffer only fail when out of memory
	_ = binary.Write(&w.buf, binary.LittleEndian, v)
}

func (w *Writer) WriteLUT(lut LUT) {
	_ = binary.Write(&w.buf, binary.LittleEndian, lut.Values)
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
