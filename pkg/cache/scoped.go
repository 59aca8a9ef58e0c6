package cache

// ScopedKeyer wraps a Keyer with a prefix so that tenants sharing one Redis
// instance do not see each other's entries.
//
//	tenant := NewScopedKeyer(NewDefaultKeyer(), "tenant:atlas:")
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

// LegendKey generates a prefixed key for packing results.
func (k *ScopedKeyer) LegendKey(docHash string, opts LegendKeyOpts) string {
	return k.prefix + k.inner.LegendKey(docHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(resultHash, opts)
}
