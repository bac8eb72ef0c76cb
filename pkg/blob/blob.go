// Package blob packs typed arrays into the binary sidecar.
//
// An [Allocator] holds five append-only buffers, one per element [Kind].
// Every append returns a [Region] addressing the appended elements; regions
// are encoded in the document as [offset, count] in elements. At the end of
// an export the buffers are written after a [Header] in the fixed order
// int32, float32, int16, uint16, uint8, and the document's binaries table
// records the byte offset of each buffer within that concatenation.
package blob

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Kind is the element type of one buffer.
type Kind uint8

const (
	Int32 Kind = iota
	Float32
	Int16
	Uint16
	Uint8

	numKinds = 5
)

// Kinds lists the buffer kinds in sidecar order.
var Kinds = [numKinds]Kind{Int32, Float32, Int16, Uint16, Uint8}

// Size returns the element size in bytes.
func (k Kind) Size() int {
	switch k {
	case Int32, Float32:
		return 4
	case Int16, Uint16:
		return 2
	}
	return 1
}

// String returns the binaries table key of the buffer.
func (k Kind) String() string {
	switch k {
	case Int32:
		return "int"
	case Float32:
		return "float"
	case Int16:
		return "short"
	case Uint16:
		return "ushort"
	case Uint8:
		return "uchar"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Region addresses count elements starting at element offset Offset of the
// buffer of kind Kind.
type Region struct {
	Kind   Kind
	Offset int
	Count  int
}

// MarshalJSON encodes the region as [offset, count].
func (r Region) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Offset, r.Count})
}

// ByteRange returns the byte range of the region inside the concatenated
// buffers, given the table of buffer base offsets.
func (r Region) ByteRange(o Offsets) (start, end int) {
	start = o.Base(r.Kind) + r.Offset*r.Kind.Size()
	return start, start + r.Count*r.Kind.Size()
}

// Allocator owns the five growable buffers of one export.
//
// The zero value is an empty allocator ready to use.
type Allocator struct {
	bufs [numKinds][]byte
}

// Append adds raw little-endian element data to the buffer of kind k.
// The length of data must be a multiple of the element size.
func (a *Allocator) Append(k Kind, data []byte) (Region, error) {
	if k >= numKinds {
		return Region{}, fmt.Errorf("blob: unknown buffer kind %d", k)
	}
	size := k.Size()
	if len(data)%size != 0 {
		return Region{}, fmt.Errorf("blob: %d bytes is not a whole number of %s elements", len(data), k)
	}
	r := Region{Kind: k, Offset: len(a.bufs[k]) / size, Count: len(data) / size}
	a.bufs[k] = append(a.bufs[k], data...)
	return r, nil
}

// AppendInt32 appends values to the int32 buffer.
func (a *Allocator) AppendInt32(values []int32) Region {
	r := a.region(Int32, len(values))
	for _, v := range values {
		a.bufs[Int32] = binary.LittleEndian.AppendUint32(a.bufs[Int32], uint32(v))
	}
	return r
}

// AppendFloat32 appends values to the float32 buffer.
func (a *Allocator) AppendFloat32(values []float32) Region {
	r := a.region(Float32, len(values))
	for _, v := range values {
		a.bufs[Float32] = binary.LittleEndian.AppendUint32(a.bufs[Float32], math.Float32bits(v))
	}
	return r
}

// AppendInt16 appends values to the int16 buffer.
func (a *Allocator) AppendInt16(values []int16) Region {
	r := a.region(Int16, len(values))
	for _, v := range values {
		a.bufs[Int16] = binary.LittleEndian.AppendUint16(a.bufs[Int16], uint16(v))
	}
	return r
}

// AppendUint16 appends values to the uint16 buffer.
func (a *Allocator) AppendUint16(values []uint16) Region {
	r := a.region(Uint16, len(values))
	for _, v := range values {
		a.bufs[Uint16] = binary.LittleEndian.AppendUint16(a.bufs[Uint16], v)
	}
	return r
}

// AppendUint8 appends values to the uint8 buffer.
func (a *Allocator) AppendUint8(values []uint8) Region {
	r := a.region(Uint8, len(values))
	a.bufs[Uint8] = append(a.bufs[Uint8], values...)
	return r
}

func (a *Allocator) region(k Kind, n int) Region {
	return Region{Kind: k, Offset: a.Len(k), Count: n}
}

// Len returns the element count of the buffer of kind k.
func (a *Allocator) Len(k Kind) int {
	return len(a.bufs[k]) / k.Size()
}

// Size returns the total byte size of all buffers, without the header.
func (a *Allocator) Size() int {
	n := 0
	for _, b := range a.bufs {
		n += len(b)
	}
	return n
}

// Empty reports whether nothing was appended to any buffer.
func (a *Allocator) Empty() bool { return a.Size() == 0 }

// Bytes returns the bytes of a region. The slice aliases the buffer.
func (a *Allocator) Bytes(r Region) []byte {
	size := r.Kind.Size()
	return a.bufs[r.Kind][r.Offset*size : (r.Offset+r.Count)*size]
}

// Offsets returns the byte offset of every buffer inside the concatenation.
func (a *Allocator) Offsets() Offsets {
	var o Offsets
	pos := 0
	for _, k := range Kinds {
		o[k] = pos
		pos += len(a.bufs[k])
	}
	return o
}

// Reset empties every buffer.
func (a *Allocator) Reset() {
	for i := range a.bufs {
		a.bufs[i] = nil
	}
}

// Offsets holds the byte offset of each buffer, indexed by [Kind].
type Offsets [numKinds]int

// Base returns the byte offset of the buffer of kind k.
func (o Offsets) Base(k Kind) int { return o[k] }
