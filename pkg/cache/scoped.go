package cache

// ScopedKeyer wraps a Keyer with a prefix. The exporter scopes keys by
// format version so that cooked data of an older format is never reused:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "b4w:6.02:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SubmeshKey generates a prefixed submesh key.
func (k *ScopedKeyer) SubmeshKey(geometryHash string, opts SubmeshKeyOpts) string {
	return k.prefix + k.inner.SubmeshKey(geometryHash, opts)
}
