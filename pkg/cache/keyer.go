package cache

// Keyer builds cache keys.
type Keyer interface {
	// SubmeshKey returns the key for one cooked submesh. geometryHash
	// identifies the raw arrays; opts holds everything else the cooker reads.
	SubmeshKey(geometryHash string, opts SubmeshKeyOpts) string
}

// SubmeshKeyOpts are the cooker inputs besides the raw geometry.
type SubmeshKeyOpts struct {
	CookerVersion int      `json:"cooker_version"`
	MatIndex      int      `json:"mat_index"`
	Flags         uint32   `json:"flags"`
	UVLayers      []string `json:"uv_layers,omitempty"`
	VertexColors  []string `json:"vertex_colors,omitempty"`
}

// DefaultKeyer hashes key parts with BLAKE3.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SubmeshKey implements [Keyer].
func (DefaultKeyer) SubmeshKey(geometryHash string, opts SubmeshKeyOpts) string {
	return hashKey("submesh", geometryHash, opts)
}
