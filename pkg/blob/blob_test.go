package blob

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"
)

func TestIndependentCounters(t *testing.T) {
	var a Allocator
	f := a.AppendFloat32(make([]float32, 10))
	i := a.AppendInt32(make([]int32, 5))

	if f != (Region{Float32, 0, 10}) {
		t.Errorf("float region = %+v, want (float32, 0, 10)", f)
	}
	if i != (Region{Int32, 0, 5}) {
		t.Errorf("int region = %+v, want (int32, 0, 5)", i)
	}
}

func TestAppendMonotonic(t *testing.T) {
	var a Allocator
	var regions []Region
	for n := range 6 {
		regions = append(regions, a.AppendUint16(make([]uint16, n)))
	}
	for i := 1; i < len(regions); i++ {
		r1, r2 := regions[i-1], regions[i]
		if r1.Offset+r1.Count > r2.Offset {
			t.Errorf("region %d %+v overlaps region %d %+v", i-1, r1, i, r2)
		}
	}
	// An empty append still reports the current length.
	empty := a.AppendInt16(nil)
	if empty != (Region{Int16, 0, 0}) {
		t.Errorf("empty region = %+v", empty)
	}
}

func TestAppendRaw(t *testing.T) {
	var a Allocator
	if _, err := a.Append(Int32, []byte{1, 2, 3}); err == nil {
		t.Error("Append of a partial element succeeded")
	}
	if _, err := a.Append(Kind(9), nil); err == nil {
		t.Error("Append of an unknown kind succeeded")
	}
	r, err := a.Append(Uint16, []byte{1, 0, 2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if r != (Region{Uint16, 0, 2}) {
		t.Errorf("region = %+v", r)
	}
}

func TestRoundTrip(t *testing.T) {
	var a Allocator
	ints := []int32{-1, 7, 1 << 30}
	floats := []float32{0.5, -2, float32(math.Pi)}
	shorts := []int16{-3, 4}
	ushorts := []uint16{65535}
	uchars := []uint8{1, 2, 3, 4, 5}

	a.AppendUint8([]uint8{9})
	rs := []Region{
		a.AppendInt32(ints),
		a.AppendFloat32(floats),
		a.AppendInt16(shorts),
		a.AppendUint16(ushorts),
		a.AppendUint8(uchars),
	}

	var buf bytes.Buffer
	n, err := a.WriteTo(&buf, Header{Major: 6, Minor: 2})
	if err != nil {
		t.Fatal(err)
	}
	if int(n) != HeaderSize+a.Size() || buf.Len() != int(n) {
		t.Fatalf("WriteTo wrote %d bytes, buffer has %d", n, buf.Len())
	}

	sc, err := ReadSidecar(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if sc.Header != (Header{6, 2}) {
		t.Errorf("header = %+v", sc.Header)
	}
	o := a.Offsets()
	if err := sc.Check(o); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	for _, r := range rs {
		got, err := sc.Slice(o, r)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, a.Bytes(r)) {
			t.Errorf("%s region bytes differ", r.Kind)
		}
	}

	got, _ := sc.Slice(o, rs[1])
	if v := math.Float32frombits(binary.LittleEndian.Uint32(got[8:])); v != floats[2] {
		t.Errorf("third float = %v, want %v", v, floats[2])
	}
	got, _ = sc.Slice(o, rs[4])
	if !bytes.Equal(got, uchars) {
		t.Errorf("uchar bytes = %v, want %v", got, uchars)
	}
}

func TestOffsets(t *testing.T) {
	var a Allocator
	a.AppendInt32([]int32{1, 2})
	a.AppendInt16([]int16{1})
	a.AppendUint8([]uint8{1})

	want := Offsets{0, 8, 8, 10, 10}
	if got := a.Offsets(); got != want {
		t.Errorf("Offsets() = %v, want %v", got, want)
	}
}

func TestRegionJSON(t *testing.T) {
	b, err := json.Marshal(Region{Float32, 12, 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[12,3]" {
		t.Errorf("json = %s, want [12,3]", b)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Header
		wantErr bool
	}{
		{"6.02", Header{6, 2}, false},
		{"5.7", Header{5, 7}, false},
		{"6", Header{}, true},
		{"a.b", Header{}, true},
		{"6.x", Header{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVersion() = %+v, want %+v", got, tt.want)
			}
		})
	}
	if s := (Header{6, 2}).String(); s != "6.02" {
		t.Errorf("String() = %q", s)
	}
}

func TestReadSidecarErrors(t *testing.T) {
	if _, err := ReadSidecar([]byte("B4W")); err == nil {
		t.Error("short sidecar accepted")
	}
	if _, err := ReadSidecar([]byte("XXXX\x06\x00\x00\x00\x02\x00\x00\x00")); err == nil {
		t.Error("bad magic accepted")
	}

	sc := &Sidecar{Data: make([]byte, 4)}
	if _, err := sc.Slice(Offsets{}, Region{Int32, 1, 1}); err == nil {
		t.Error("out of range region accepted")
	}
	if err := sc.Check(Offsets{0, 4, 4, 4, 8}); err == nil {
		t.Error("offsets past the data accepted")
	}
	if err := sc.Check(Offsets{0, 3, 3, 3, 3}); err == nil {
		t.Error("partial int buffer accepted")
	}
}

func TestReset(t *testing.T) {
	var a Allocator
	a.AppendUint8([]uint8{1})
	a.Reset()
	if !a.Empty() {
		t.Error("Reset left data behind")
	}
	if r := a.AppendUint8([]uint8{1}); r.Offset != 0 {
		t.Errorf("offset after Reset = %d", r.Offset)
	}
}
