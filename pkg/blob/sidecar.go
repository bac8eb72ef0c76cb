package blob

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Magic is the 4-byte tag every sidecar starts with.
const Magic = "B4WB"

// HeaderSize is the byte size of an encoded [Header].
const HeaderSize = 12

// Header is the sidecar prefix: the magic tag and the format version.
type Header struct {
	Major int32
	Minor int32
}

// ParseVersion splits a "major.minor" format version string.
func ParseVersion(v string) (Header, error) {
	major, minor, ok := strings.Cut(v, ".")
	if !ok {
		return Header{}, fmt.Errorf("blob: format version %q is not major.minor", v)
	}
	ma, err := strconv.ParseInt(major, 10, 32)
	if err != nil {
		return Header{}, fmt.Errorf("blob: format version %q: %w", v, err)
	}
	mi, err := strconv.ParseInt(minor, 10, 32)
	if err != nil {
		return Header{}, fmt.Errorf("blob: format version %q: %w", v, err)
	}
	return Header{Major: int32(ma), Minor: int32(mi)}, nil
}

func (h Header) String() string { return fmt.Sprintf("%d.%02d", h.Major, h.Minor) }

// MarshalBinary encodes the header.
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, HeaderSize)
	b = append(b, Magic...)
	b = binary.LittleEndian.AppendUint32(b, uint32(h.Major))
	b = binary.LittleEndian.AppendUint32(b, uint32(h.Minor))
	return b, nil
}

// WriteTo writes the header followed by all buffers in sidecar order.
func (a *Allocator) WriteTo(w io.Writer, h Header) (int64, error) {
	head, _ := h.MarshalBinary()
	n, err := w.Write(head)
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, k := range Kinds {
		n, err = w.Write(a.bufs[k])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Sidecar is a decoded sidecar file.
type Sidecar struct {
	Header Header
	// Data is everything after the header.
	Data []byte
}

// ReadSidecar decodes a sidecar and checks its magic tag.
func ReadSidecar(b []byte) (*Sidecar, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("blob: sidecar is %d bytes, shorter than its header", len(b))
	}
	if !bytes.Equal(b[:4], []byte(Magic)) {
		return nil, fmt.Errorf("blob: bad magic %q", b[:4])
	}
	return &Sidecar{
		Header: Header{
			Major: int32(binary.LittleEndian.Uint32(b[4:8])),
			Minor: int32(binary.LittleEndian.Uint32(b[8:12])),
		},
		Data: b[HeaderSize:],
	}, nil
}

// Slice returns the bytes of a region, or an error when the region lies
// outside the data.
func (s *Sidecar) Slice(o Offsets, r Region) ([]byte, error) {
	start, end := r.ByteRange(o)
	if start < 0 || end > len(s.Data) || start > end {
		return nil, fmt.Errorf("blob: %s region [%d, %d] exceeds sidecar data", r.Kind, r.Offset, r.Count)
	}
	return s.Data[start:end], nil
}

// Check verifies that the buffer offsets are ordered and fit the data.
func (s *Sidecar) Check(o Offsets) error {
	if o[Int32] != 0 {
		return fmt.Errorf("blob: int offset is %d, want 0", o[Int32])
	}
	prev := 0
	for i, k := range Kinds[1:] {
		pk := Kinds[i]
		if o[k] < prev {
			return fmt.Errorf("blob: %s offset %d precedes %s offset %d", k, o[k], pk, prev)
		}
		if (o[k]-prev)%pk.Size() != 0 {
			return fmt.Errorf("blob: %s buffer length %d is not a multiple of %d", pk, o[k]-prev, pk.Size())
		}
		prev = o[k]
	}
	if prev > len(s.Data) {
		return fmt.Errorf("blob: uchar offset %d exceeds sidecar data of %d bytes", prev, len(s.Data))
	}
	return nil
}
