// Package identity derives stable block identities and tracks which blocks
// an export has already serialized.
//
// # Identities
//
// An identity is a name-based UUID computed from a block's kind, name and
// owner (library path, or the scene file path for local blocks) plus an
// optional salt:
//
//	id := identity.Of(scene.KindObject, "Lamp", "/lib/lights.blend", "")
//
// The same inputs always produce the same identity, across runs and
// machines. Salts give one block several independent identities, one per
// cooked variant (curve object, hair duplicate, mesh per material list).
//
// # Dedup
//
// [Cache] maps identities to the record produced for them, and [Visited]
// tracks per-category walk state so a block reached through a second edge
// resolves to the first result instead of being walked again.
package identity

import (
	"github.com/google/uuid"

	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Namespace is the UUID namespace all identities are derived in.
var Namespace = uuid.MustParse("6f1c3b2e-8d4a-5e0f-9b7c-2a1d4e6f8b90")

// Salts of the cooked object variants.
const (
	SaltCurve = "curve_exp_done"
	SaltHair  = "hair_exp_done"
)

// Of returns the identity of a block of the given kind, name and owner,
// salted with salt. The result is the canonical 36-character UUID string.
func Of(kind scene.Kind, name, owner, salt string) string {
	data := make([]byte, 0, len(name)+len(owner)+len(salt)+24)
	data = append(data, kind.String()...)
	data = append(data, 0)
	data = append(data, name...)
	data = append(data, 0)
	data = append(data, owner...)
	data = append(data, 0)
	data = append(data, salt...)
	return uuid.NewMD5(Namespace, data).String()
}

// Owner returns the path identities of the block are derived from: its
// library path, or the graph's scene file path for local blocks.
func Owner(g *scene.Graph, b scene.Block) string {
	if lib := b.Block().Library; lib != "" {
		return lib
	}
	return g.BlendPath
}

// OfBlock returns the salted identity of a block stored in g.
func OfBlock(g *scene.Graph, b scene.Block, salt string) string {
	d := b.Block()
	return Of(d.Kind, d.Name, Owner(g, b), salt)
}

// Valid reports whether s is a well-formed identity.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
