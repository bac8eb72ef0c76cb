// Package geometry cooks raw submesh arrays into the packed vertex data the
// runtime loads.
//
// Cooking validates every array and quantizes normals, tangents, vertex
// group weights and colors. A validation failure is reported as a [Status]
// on the cooked submesh, not as an error: the exporter still writes the data
// and records a message. Errors are reserved for input the cooker cannot
// process at all.
package geometry

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Flags select optional cooker outputs.
type Flags uint32

const (
	// FlagVertexGroups exports vertex group weights.
	FlagVertexGroups Flags = 1 << iota
	// FlagTangents exports tangents (the material uses normal maps).
	FlagTangents
	// FlagShadeTangents exports shading tangents for tangent shading.
	FlagShadeTangents
	// FlagVertexColors exports vertex colors.
	FlagVertexColors
	// FlagVertexAnim keeps the mesh non-indexed for vertex animation.
	FlagVertexAnim
)

// Status is the validation result of one cooked submesh.
type Status int

const (
	StatusOK Status = iota
	StatusPosition
	StatusNormal
	StatusTangent
	StatusTexcoord
	StatusTexcoord2
	StatusGroup
	StatusColor
	StatusShadeTangents
)

// Message returns the exporter message for a failed status. It returns ""
// for StatusOK and unknown codes.
func (s Status) Message(mesh string) string {
	var what string
	switch s {
	case StatusPosition:
		what = "Wrong vertices positions."
	case StatusNormal:
		what = "Wrong normals."
	case StatusTangent:
		what = "Wrong tangents."
	case StatusTexcoord, StatusTexcoord2:
		what = "Wrong texture coordinates."
	case StatusGroup:
		what = "Wrong vertex group weights."
	case StatusColor:
		what = "Wrong vertex color values."
	case StatusShadeTangents:
		what = "Wrong shading tangents values."
	default:
		return ""
	}
	return "Incorrect mesh " + mesh + ". " + what
}

// Request is one submesh to cook.
type Request struct {
	Mesh     string
	MatIndex int
	Flags    Flags
	Geometry scene.Geometry
}

// Submesh is the cooked output, ready to be appended to the binary buffers.
type Submesh struct {
	Status     Status    `cbor:"1,keyasint"`
	BaseLength int       `cbor:"2,keyasint"`
	Indices    []int32   `cbor:"3,keyasint,omitempty"`
	Position   []float32 `cbor:"4,keyasint,omitempty"`
	Texcoord   []float32 `cbor:"5,keyasint,omitempty"`
	ShadeTangs []float32 `cbor:"6,keyasint,omitempty"`
	Normal     []int16   `cbor:"7,keyasint,omitempty"`
	Tangent    []int16   `cbor:"8,keyasint,omitempty"`
	Group      []uint16  `cbor:"9,keyasint,omitempty"`
	Color      []uint8   `cbor:"10,keyasint,omitempty"`
}

// Cooker turns a request into a cooked submesh.
type Cooker interface {
	Cook(ctx context.Context, req Request) (*Submesh, error)
}

// CookerFunc adapts a function to [Cooker].
type CookerFunc func(ctx context.Context, req Request) (*Submesh, error)

// Cook calls f.
func (f CookerFunc) Cook(ctx context.Context, req Request) (*Submesh, error) { return f(ctx, req) }

// Version identifies the cooking rules. Cached results of another version
// are never reused.
const Version = 1

// DefaultCooker validates and quantizes geometry in process.
type DefaultCooker struct{}

// Cook implements [Cooker]. The first failed check decides the status;
// later arrays are still cooked.
func (DefaultCooker) Cook(ctx context.Context, req Request) (*Submesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := req.Geometry
	c := cook{}
	out := &Submesh{}

	if len(g.Positions)%3 != 0 || !finite(g.Positions) {
		c.fail(StatusPosition)
	}
	out.BaseLength = len(g.Positions) / 3
	out.Position = g.Positions[:out.BaseLength*3]
	n := out.BaseLength

	if len(g.Normals) > 0 {
		if len(g.Normals) != 3*n || !inRange(g.Normals, -1, 1) {
			c.fail(StatusNormal)
		}
		out.Normal = quantizeSigned(g.Normals)
	}

	if req.Flags&FlagTangents != 0 && len(g.Tangents) > 0 {
		if len(g.Tangents) != 4*n || !inRange(g.Tangents, -1, 1) {
			c.fail(StatusTangent)
		}
		out.Tangent = quantizeSigned(g.Tangents)
	}

	if len(g.Texcoords) > 0 {
		if len(g.Texcoords) != 2*n || !finite(g.Texcoords) {
			c.fail(StatusTexcoord)
		}
		out.Texcoord = append(out.Texcoord, g.Texcoords...)
	}
	if len(g.Texcoords2) > 0 {
		if len(g.Texcoords2) != 2*n || !finite(g.Texcoords2) {
			c.fail(StatusTexcoord2)
		}
		out.Texcoord = append(out.Texcoord, g.Texcoords2...)
	}

	if req.Flags&FlagVertexGroups != 0 && len(g.Groups) > 0 {
		if n == 0 || len(g.Groups)%n != 0 || !inRange(g.Groups, 0, 1) {
			c.fail(StatusGroup)
		}
		out.Group = quantizeUnsigned16(g.Groups)
	}

	if req.Flags&FlagVertexColors != 0 && len(g.Colors) > 0 {
		if n == 0 || len(g.Colors)%n != 0 || !inRange(g.Colors, 0, 1) {
			c.fail(StatusColor)
		}
		out.Color = quantizeUnsigned8(g.Colors)
	}

	if req.Flags&FlagShadeTangents != 0 && len(g.ShadeTangs) > 0 {
		if len(g.ShadeTangs) != 4*n || !finite(g.ShadeTangs) {
			c.fail(StatusShadeTangents)
		}
		out.ShadeTangs = g.ShadeTangs
	}

	if req.Flags&FlagVertexAnim == 0 {
		if len(g.Indices)%3 != 0 {
			return nil, fmt.Errorf("mesh %q: %d indices do not form triangles", req.Mesh, len(g.Indices))
		}
		for _, i := range g.Indices {
			if i < 0 || int(i) >= n {
				return nil, fmt.Errorf("mesh %q: index %d out of range [0, %d)", req.Mesh, i, n)
			}
		}
		out.Indices = g.Indices
	}

	out.Status = c.status
	return out, nil
}

type cook struct{ status Status }

func (c *cook) fail(s Status) {
	if c.status == StatusOK {
		c.status = s
	}
}

func finite(vs []float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// inRange allows a small tolerance for values normalized by the host.
func inRange(vs []float32, lo, hi float32) bool {
	const eps = 1e-3
	for _, v := range vs {
		if !(v >= lo-eps && v <= hi+eps) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

func quantizeSigned(vs []float32) []int16 {
	out := make([]int16, len(vs))
	for i, v := range vs {
		if math.IsNaN(float64(v)) {
			continue
		}
		out[i] = int16(math.Round(float64(clamp(v, -1, 1)) * math.MaxInt16))
	}
	return out
}

func quantizeUnsigned16(vs []float32) []uint16 {
	out := make([]uint16, len(vs))
	for i, v := range vs {
		if math.IsNaN(float64(v)) {
			continue
		}
		out[i] = uint16(math.Round(float64(clamp(v, 0, 1)) * math.MaxUint16))
	}
	return out
}

func quantizeUnsigned8(vs []float32) []uint8 {
	out := make([]uint8, len(vs))
	for i, v := range vs {
		if math.IsNaN(float64(v)) {
			continue
		}
		out[i] = uint8(math.Round(float64(clamp(v, 0, 1)) * math.MaxUint8))
	}
	return out
}
