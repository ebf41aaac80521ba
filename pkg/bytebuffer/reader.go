package bytebuffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer is reported when a read needs more bytes than remain.
var ErrShortBuffer = errors.New("bytebuffer: short buffer")

// ErrCorrupt is reported when a decoded length or count is impossible.
var ErrCorrupt = errors.New("bytebuffer: corrupt data")

// Reader decodes the primitives written by Writer in sequence.
//
// Errors are sticky: after the first failure every read returns the zero
// value and Err reports the original cause. Generated constructors read a
// whole table and check Err once.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int { return r.pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// ReadInt reads a 4-byte integer.
func (r *Reader) ReadInt() int32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// ReadLong reads an 8-byte integer.
func (r *Reader) ReadLong() int64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// ReadBool reads an 8-byte integer slot; any non-zero value is true.
func (r *Reader) ReadBool() bool {
	return r.ReadLong() != 0
}

// ReadDouble reads an 8-byte IEEE-754 float.
func (r *Reader) ReadDouble() float64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString() string {
	b := r.next(4)
	if b == nil {
		return ""
	}
	n := int(binary.LittleEndian.Uint32(b))
	body := r.next(n)
	if body == nil {
		return ""
	}
	return string(body)
}

// ReadSet reads a count followed by that many strings.
func (r *Reader) ReadSet() []string {
	n := r.ReadLong()
	if r.err != nil {
		return nil
	}
	// Every element carries at least its 4-byte length prefix.
	if n < 0 || n > int64(r.Len()/4) {
		r.fail(fmt.Errorf("%w: set count %d at offset %d", ErrCorrupt, n, r.pos-8))
		return nil
	}
	items := make([]string, 0, n)
	for i := int64(0); i < n; i++ {
		s := r.ReadString()
		if r.err != nil {
			return nil
		}
		items = append(items, s)
	}
	return items
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.Len() {
		r.fail(fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.pos, r.Len()))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
