package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned by [Graph.Add] when a block has no name.
	// Names are the only handle references can use, so they are mandatory.
	ErrEmptyName = errors.New("data block name must not be empty")

	// ErrDuplicateBlock is returned by [Graph.Add] when a block of the same
	// kind, name and library already exists.
	ErrDuplicateBlock = errors.New("duplicate data block")

	// ErrUnknownKind is returned by [Graph.Add] for block types the graph
	// does not know how to index.
	ErrUnknownKind = errors.New("unknown data block kind")
)

// ID addresses a block inside a [Graph]. IDs start at 1; the zero value
// [None] means "no block".
type ID int32

// None is the zero ID. A resolved [Ref] with ID None points nowhere.
const None ID = 0

// Kind is the data-block category. It selects the identity type name and
// the document collection a block is exported into.
type Kind uint8

const (
	KindScene Kind = iota + 1
	KindObject
	KindMesh
	KindMaterial
	KindTexture
	KindImage
	KindSound
	KindWorld
	KindNodeTree
	KindAction
	KindCamera
	KindLamp
	KindArmature
	KindCurve
	KindSpeaker
	KindParticleSettings
	KindGroup
)

var kindNames = [...]string{
	KindScene:            "Scene",
	KindObject:           "Object",
	KindMesh:             "Mesh",
	KindMaterial:         "Material",
	KindTexture:          "Texture",
	KindImage:            "Image",
	KindSound:            "Sound",
	KindWorld:            "World",
	KindNodeTree:         "Node Tree",
	KindAction:           "Action",
	KindCamera:           "Camera",
	KindLamp:             "Lamp",
	KindArmature:         "Armature",
	KindCurve:            "Curve",
	KindSpeaker:          "Speaker",
	KindParticleSettings: "Particle Settings",
	KindGroup:            "Group",
}

var kindTags = [...]string{
	KindScene:            "scenes",
	KindObject:           "objects",
	KindMesh:             "meshes",
	KindMaterial:         "materials",
	KindTexture:          "textures",
	KindImage:            "images",
	KindSound:            "sounds",
	KindWorld:            "worlds",
	KindNodeTree:         "node_groups",
	KindAction:           "actions",
	KindCamera:           "cameras",
	KindLamp:             "lamps",
	KindArmature:         "armatures",
	KindCurve:            "curves",
	KindSpeaker:          "speakers",
	KindParticleSettings: "particles",
	KindGroup:            "groups",
}

// String returns the host type name, e.g. "Object" or "Particle Settings".
// It is part of every identity derived for a block of this kind.
func (k Kind) String() string {
	if k == 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Tag returns the document collection key for the kind, e.g. "objects".
func (k Kind) Tag() string {
	if k == 0 || int(k) >= len(kindTags) {
		return ""
	}
	return kindTags[k]
}

// Datablock holds the fields every block shares. It is embedded by all
// concrete block types.
type Datablock struct {
	ID          ID     `yaml:"-"`
	Kind        Kind   `yaml:"-"`
	Name        string `yaml:"name"`
	Library     string `yaml:"library,omitempty"` // owning library path, empty when local
	DoNotExport bool   `yaml:"do_not_export,omitempty"`
	Props       Props  `yaml:"props,omitempty"`
}

// Block returns the shared header. Embedding Datablock makes every concrete
// type satisfy [Block].
func (d *Datablock) Block() *Datablock { return d }

// Exported reports whether the block takes part in the export.
func (d *Datablock) Exported() bool { return !d.DoNotExport }

// Block is implemented by every data block stored in a [Graph].
type Block interface {
	Block() *Datablock
}

type blockKey struct {
	kind    Kind
	name    string
	library string
}

// Graph is the arena of data blocks for one scene file.
//
// The zero value is not usable - use NewGraph.
type Graph struct {
	// BlendPath is the path of the file the graph was loaded from. Identities
	// of local blocks are derived from it.
	BlendPath string

	blocks []Block
	index  map[blockKey]ID
}

// NewGraph creates an empty graph for the given source file path.
func NewGraph(blendPath string) *Graph {
	return &Graph{
		BlendPath: blendPath,
		index:     make(map[blockKey]ID),
	}
}

// Add stores a block, assigns its ID and Kind, and returns the ID.
// Returns ErrEmptyName, ErrDuplicateBlock or ErrUnknownKind on failure.
func (g *Graph) Add(b Block) (ID, error) {
	kind := kindOf(b)
	if kind == 0 {
		return None, fmt.Errorf("%w: %T", ErrUnknownKind, b)
	}
	d := b.Block()
	if d.Name == "" {
		return None, ErrEmptyName
	}
	key := blockKey{kind, d.Name, d.Library}
	if _, exists := g.index[key]; exists {
		return None, fmt.Errorf("%w: %s %q", ErrDuplicateBlock, kind, d.Name)
	}
	g.blocks = append(g.blocks, b)
	d.ID = ID(len(g.blocks))
	d.Kind = kind
	g.index[key] = d.ID
	return d.ID, nil
}

// Block returns the block with the given ID, or nil.
func (g *Graph) Block(id ID) Block {
	if id <= None || int(id) > len(g.blocks) {
		return nil
	}
	return g.blocks[id-1]
}

// Lookup finds a block by kind, name and owning library.
func (g *Graph) Lookup(kind Kind, name, library string) (ID, bool) {
	id, ok := g.index[blockKey{kind, name, library}]
	return id, ok
}

// Len returns the number of stored blocks.
func (g *Graph) Len() int { return len(g.blocks) }

// Blocks returns all blocks of the given kind in insertion order.
func (g *Graph) Blocks(kind Kind) []Block {
	var out []Block
	for _, b := range g.blocks {
		if b.Block().Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// Mark returns a token for the current arena size. Pass it to Release to
// drop every block added afterwards.
func (g *Graph) Mark() int { return len(g.blocks) }

// Release removes all blocks added after mark. Releasing an already released
// mark is a no-op.
func (g *Graph) Release(mark int) {
	if mark < 0 || mark >= len(g.blocks) {
		return
	}
	for _, b := range g.blocks[mark:] {
		d := b.Block()
		delete(g.index, blockKey{d.Kind, d.Name, d.Library})
	}
	clear(g.blocks[mark:])
	g.blocks = g.blocks[:mark]
}

// Get returns the block with the given ID as type T.
func Get[T Block](g *Graph, id ID) (T, bool) {
	t, ok := g.Block(id).(T)
	return t, ok
}

// Deref returns the block a resolved reference points at as type T.
func Deref[T Block](g *Graph, r Ref) (T, bool) {
	return Get[T](g, r.ID)
}

// All returns every block of type T in insertion order.
func All[T Block](g *Graph) []T {
	var out []T
	for _, b := range g.blocks {
		if t, ok := b.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func kindOf(b Block) Kind {
	switch b.(type) {
	case *Scene:
		return KindScene
	case *Object:
		return KindObject
	case *Mesh:
		return KindMesh
	case *Material:
		return KindMaterial
	case *Texture:
		return KindTexture
	case *Image:
		return KindImage
	case *Sound:
		return KindSound
	case *World:
		return KindWorld
	case *NodeGroup:
		return KindNodeTree
	case *Action:
		return KindAction
	case *Camera:
		return KindCamera
	case *Lamp:
		return KindLamp
	case *Armature:
		return KindArmature
	case *Curve:
		return KindCurve
	case *Speaker:
		return KindSpeaker
	case *ParticleSettings:
		return KindParticleSettings
	case *Group:
		return KindGroup
	}
	return 0
}
