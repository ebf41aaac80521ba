// Package bytebuffer implements the little-endian byte stream shared by the
// csvpack compiler (Writer) and the generated data bindings (Reader).
//
// Wire layout of the primitives:
//
//	int     4 bytes, two's complement
//	long    8 bytes, two's complement (booleans are written as a long 0/1)
//	double  8 bytes, IEEE-754
//	string  uint32 byte length, then the bytes
//	set     long element count, then each element as a string
package bytebuffer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer is an append-only byte sequence. The only in-place edit it allows
// is PutIntAt, used to back-patch a reserved count.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the written bytes. The slice aliases the Writer's storage.
func (w *Writer) Bytes() []byte { return w.buf }

// PutInt appends a 4-byte integer.
func (w *Writer) PutInt(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// PutLong appends an 8-byte integer.
func (w *Writer) PutLong(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// PutBool appends v as an 8-byte integer slot holding 0 or 1.
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutLong(1)
		return
	}
	w.PutLong(0)
}

// PutDouble appends an 8-byte IEEE-754 float.
func (w *Writer) PutDouble(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// PutString appends a length-prefixed string.
func (w *Writer) PutString(s string) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// PutSet appends a count followed by each element as a string.
func (w *Writer) PutSet(items []string) {
	w.PutLong(int64(len(items)))
	for _, s := range items {
		w.PutString(s)
	}
}

// PutIntAt overwrites the 4-byte integer at offset.
func (w *Writer) PutIntAt(offset int, v int32) error {
	if offset < 0 || offset+4 > len(w.buf) {
		return fmt.Errorf("bytebuffer: patch offset %d out of range (len %d)", offset, len(w.buf))
	}
	binary.LittleEndian.PutUint32(w.buf[offset:], uint32(v))
	return nil
}

// Truncate discards everything written after the first n bytes.
func (w *Writer) Truncate(n int) {
	if n < 0 || n > len(w.buf) {
		return
	}
	w.buf = w.buf[:n]
}
